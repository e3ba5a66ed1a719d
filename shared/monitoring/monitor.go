package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Monitor tracks request outcomes for the health endpoints. Requests are
// served concurrently, so all state is mutex-guarded.
type Monitor struct {
	mu              sync.RWMutex
	totalRequests   int
	failedRequests  int
	lastRequestOK   bool
	lastRequestTime time.Time
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordSuccess(endpoint string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests++
	m.lastRequestOK = true
	m.lastRequestTime = time.Now()

	log.Printf("✅ %s completed successfully (took %v)", endpoint, duration)
}

func (m *Monitor) RecordFailure(endpoint string, err error, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests++
	m.failedRequests++
	m.lastRequestOK = false
	m.lastRequestTime = time.Now()

	log.Printf("🚨 %s failed: %v (took %v)", endpoint, err, duration)
}

func (m *Monitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRequestTime.IsZero() {
		return true // No requests yet, assume healthy
	}
	return m.lastRequestOK
}

func (m *Monitor) GetStatusSummary() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.lastRequestTime.IsZero() {
		return "No requests yet"
	}

	state := "✅"
	if !m.lastRequestOK {
		state = "❌"
	}
	return fmt.Sprintf("%s %d requests, %d failed, last: %s",
		state, m.totalRequests, m.failedRequests, m.lastRequestTime.Format("Jan 2 15:04"))
}
