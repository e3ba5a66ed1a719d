package service

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"clipwatch/internal/models"
	"clipwatch/shared/ai"
)

// videoIDPattern matches a YouTube video ID: exactly 11 characters, each
// alphanumeric, hyphen, or underscore.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

const (
	errMissingVideoID = "Missing 'videoId' in request body."
	errInvalidVideoID = "Invalid video ID format. YouTube video IDs should be 11 characters long."
)

// handleTranscribe serves POST /api/transcribe: fetch, transcribe, respond.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if done := s.preamble(w, r); done {
		return
	}

	start := time.Now()

	req, errMsg := decodeRequest(r)
	if errMsg != "" {
		s.writeError(w, "/api/transcribe", errMsg, start)
		return
	}

	log.Printf("[ASR] Starting ASR transcription for video: %s", req.VideoID)

	segments, err := s.runPipeline(r.Context(), req.VideoID)
	if err != nil {
		log.Printf("[ASR] ASR transcription failed: %v", err)
		s.writeError(w, "/api/transcribe", err.Error(), start)
		return
	}

	log.Printf("[ASR] ASR transcription completed with %d segments", len(segments))

	writeJSON(w, models.TranscribeResponse{
		Transcript:             segments,
		ExtractionMethod:       models.ExtractionMethod,
		TranscriptSegmentCount: len(segments),
	})
	s.monitor.RecordSuccess("/api/transcribe", time.Since(start))
}

// handleAnalyze serves POST /api/analyze-asr: fetch, transcribe, classify,
// respond.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if done := s.preamble(w, r); done {
		return
	}

	start := time.Now()

	req, errMsg := decodeRequest(r)
	if errMsg != "" {
		s.writeError(w, "/api/analyze-asr", errMsg, start)
		return
	}

	if s.classifier == nil {
		s.writeError(w, "/api/analyze-asr", ai.ErrMissingAPIKey.Error(), start)
		return
	}

	sensitivity := sensitivityIndex(req.Sensitivity)
	maxTimestamp := s.resolveMaxTimestamp(r.Context(), req.VideoID, req.VideoDuration)

	log.Printf("[Analysis] Starting ASR analysis for video: %s (sensitivity %d, cutoff %ds)",
		req.VideoID, sensitivity, maxTimestamp)

	segments, err := s.runPipeline(r.Context(), req.VideoID)
	if err != nil {
		log.Printf("[Analysis] ASR analysis failed: %v", err)
		s.writeError(w, "/api/analyze-asr", err.Error(), start)
		return
	}

	log.Printf("[Analysis] Analyzing %d transcript segments...", len(segments))

	events, diagnostics := s.classifier.Classify(r.Context(), segments, sensitivity, maxTimestamp)
	for _, diag := range diagnostics {
		log.Printf("[Analysis] %v", diag)
	}
	if events == nil {
		events = []models.AnalysisEvent{}
	}

	log.Printf("[Analysis] Analysis complete. Found %d events using ASR transcription", len(events))

	writeJSON(w, models.AnalyzeResponse{
		Events:                 events,
		ExtractionMethod:       models.ExtractionMethod,
		TranscriptSegmentCount: len(segments),
	})
	s.monitor.RecordSuccess("/api/analyze-asr", time.Since(start))
}

// preamble applies CORS headers and handles preflight and method gating.
// It reports true when the request has been fully answered.
func (s *Server) preamble(w http.ResponseWriter, r *http.Request) bool {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return true
	case http.MethodPost:
		return false
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return true
	}
}

// decodeRequest parses and validates the request body. The returned message
// is empty on success; any non-empty message is reported in-band.
func decodeRequest(r *http.Request) (*models.AnalyzeRequest, string) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errMissingVideoID
	}
	if req.VideoID == "" {
		return nil, errMissingVideoID
	}
	if !videoIDPattern.MatchString(req.VideoID) {
		return nil, errInvalidVideoID
	}
	return &req, ""
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// writeJSON renders a success-shaped body. Logical failures also go through
// HTTP 200; the error field is the only failure signal the client sees.
func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint, message string, start time.Time) {
	writeJSON(w, models.ErrorResponse{Error: message})
	s.monitor.RecordFailure(endpoint, errors.New(message), time.Since(start))
}
