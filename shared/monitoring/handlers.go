package monitoring

import (
	"fmt"
	"net/http"
)

// Register mounts the health and status endpoints on the service mux.
func (m *Monitor) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", m.healthHandler)
	mux.HandleFunc("/status", m.statusHandler)
}

func (m *Monitor) healthHandler(w http.ResponseWriter, r *http.Request) {
	if m.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", m.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", m.GetStatusSummary())
	}
}

func (m *Monitor) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", m.GetStatusSummary())
}
