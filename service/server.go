package service

import (
	"context"
	"log"
	"net/http"
	"time"

	"clipwatch/internal/models"
	"clipwatch/shared/ai"
	"clipwatch/shared/config"
	"clipwatch/shared/media"
	"clipwatch/shared/monitoring"
	"clipwatch/shared/storage"
	"clipwatch/shared/transcribe"
	"clipwatch/shared/youtube"
)

// AudioFetcher downloads a video's audio track to a local file.
type AudioFetcher interface {
	OutputPath(videoID string) string
	Fetch(ctx context.Context, videoID, outputPath string) error
}

// Transcriber converts a local audio file into transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]models.TranscriptSegment, error)
}

// Classifier flags negative content in transcript segments.
type Classifier interface {
	Classify(ctx context.Context, segments []models.TranscriptSegment, sensitivity, maxTimestampSec int) ([]models.AnalysisEvent, []error)
}

// MetadataResolver looks up public video metadata.
type MetadataResolver interface {
	GetVideoMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error)
}

// TranscriptStore caches transcripts between requests.
type TranscriptStore interface {
	Get(videoID string) ([]models.TranscriptSegment, bool)
	Put(videoID string, segments []models.TranscriptSegment) error
}

// Server wires the pipeline components behind the HTTP endpoints. The
// classifier and metadata resolver are optional: without a Gemini key the
// analyze endpoint reports the missing credential in-band, and without a
// YouTube key duration resolution falls back to the default cutoff.
type Server struct {
	fetcher     AudioFetcher
	transcriber Transcriber
	classifier  Classifier
	metadata    MetadataResolver
	cache       TranscriptStore
	monitor     *monitoring.Monitor
}

func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		fetcher:     media.NewFetcher(&cfg.Downloader),
		transcriber: transcribe.NewTranscriber(&cfg.Whisper),
		monitor:     monitoring.NewMonitor(),
	}

	if cfg.AI.GeminiAPIKey != "" {
		classifier, err := ai.NewClassifier(&cfg.AI)
		if err != nil {
			return nil, err
		}
		s.classifier = classifier
		log.Println("Content classifier initialized")
	} else {
		log.Println("No Gemini API key configured; analyze endpoint will report the missing credential")
	}

	if cfg.YouTube.APIKey != "" {
		client, err := youtube.NewClient(&cfg.YouTube)
		if err != nil {
			return nil, err
		}
		s.metadata = client
		log.Println("YouTube metadata client initialized")
	}

	if !cfg.Cache.Disabled {
		cache, err := storage.NewTranscriptCache(cfg.Cache.DataDir, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour)
		if err != nil {
			return nil, err
		}
		s.cache = cache
		log.Printf("Transcript cache initialized (%d transcript(s) cached)", cache.Count())
	}

	return s, nil
}

// Register mounts the API and health endpoints on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/transcribe", s.handleTranscribe)
	mux.HandleFunc("/api/analyze-asr", s.handleAnalyze)
	s.monitor.Register(mux)
}
