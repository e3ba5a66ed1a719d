package service

import (
	"context"
	"errors"
	"log"
	"os"

	"clipwatch/internal/models"
)

// errEmptyTranscript is reported when the recognizer found no speech.
var errEmptyTranscript = errors.New("ASR transcription produced no results. The video may not contain speech or the audio quality is too poor.")

// runPipeline executes the shared fetch → transcribe portion of both
// endpoints. The temporary audio artifact is removed on every exit path;
// a cache hit skips the download entirely.
func (s *Server) runPipeline(ctx context.Context, videoID string) ([]models.TranscriptSegment, error) {
	if s.cache != nil {
		if segments, ok := s.cache.Get(videoID); ok {
			log.Printf("[ASR] Using cached transcript for video %s (%d segments)", videoID, len(segments))
			return segments, nil
		}
	}

	audioPath := s.fetcher.OutputPath(videoID)
	defer s.cleanupAudioFile(audioPath)

	if err := s.fetcher.Fetch(ctx, videoID, audioPath); err != nil {
		return nil, err
	}

	segments, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	if len(segments) == 0 {
		return nil, errEmptyTranscript
	}

	if s.cache != nil {
		if err := s.cache.Put(videoID, segments); err != nil {
			log.Printf("[ASR] Failed to cache transcript for video %s: %v", videoID, err)
		}
	}

	return segments, nil
}

// cleanupAudioFile removes the temporary audio artifact. Failures are
// logged, never escalated.
func (s *Server) cleanupAudioFile(audioPath string) {
	if err := os.Remove(audioPath); err != nil {
		if os.IsNotExist(err) {
			return
		}
		log.Printf("[ASR] Failed to cleanup audio file %s: %v", audioPath, err)
		return
	}
	log.Printf("[ASR] Cleaned up audio file: %s", audioPath)
}

// sensitivityIndex coerces the caller-supplied sensitivity into the 1..10
// index, defaulting to 5 for absent, non-numeric, or out-of-range values.
func sensitivityIndex(v any) int {
	if f, ok := asNumber(v); ok && f >= 1 && f <= 10 {
		return int(f)
	}
	return 5
}

// defaultMaxTimestampSec bounds analysis when no usable duration is known.
const defaultMaxTimestampSec = 450

// resolveMaxTimestamp picks the analysis cutoff: the caller-supplied
// duration when plausible, otherwise the actual video duration from the
// metadata resolver when one is configured, otherwise the default.
func (s *Server) resolveMaxTimestamp(ctx context.Context, videoID string, v any) int {
	if f, ok := asNumber(v); ok && f > 10 {
		return int(f)
	}

	if s.metadata != nil {
		meta, err := s.metadata.GetVideoMetadata(ctx, videoID)
		if err != nil {
			log.Printf("[Analysis] Failed to resolve duration for video %s: %v", videoID, err)
		} else if meta.DurationSeconds > 10 {
			log.Printf("[Analysis] Resolved duration for video %s: %ds", videoID, meta.DurationSeconds)
			return meta.DurationSeconds
		}
	}

	return defaultMaxTimestampSec
}

// asNumber extracts a numeric value from a decoded JSON field.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
