package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipwatch/internal/models"
	"clipwatch/shared/config"
)

// TranscriptionError wraps any failure while invoking the recognizer or
// decoding its output.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("failed to transcribe audio: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Transcriber runs a local Whisper CLI over an audio file and normalizes
// its JSON output into transcript segments.
type Transcriber struct {
	config *config.WhisperConfig

	// runCommand is swapped out in tests.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewTranscriber(cfg *config.WhisperConfig) *Transcriber {
	return &Transcriber{
		config: cfg,
		runCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// whisperSegment mirrors one entry of the recognizer's segments array.
// Start and end are seconds.
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// whisperPayload mirrors the recognizer's JSON output file.
type whisperPayload struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

// Transcribe runs the recognizer over audioPath and returns the transcript
// in playback order. An empty slice (no speech detected) is not an error;
// the caller decides how to report it.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) ([]models.TranscriptSegment, error) {
	log.Printf("[ASR] Starting transcription with Whisper model %s...", t.config.Model)

	outputDir, err := os.MkdirTemp("", "clipwatch-whisper-")
	if err != nil {
		return nil, &TranscriptionError{Err: fmt.Errorf("create scratch dir: %w", err)}
	}
	defer func() {
		if err := os.RemoveAll(outputDir); err != nil {
			log.Printf("[ASR] Failed to remove scratch dir %s: %v", outputDir, err)
		}
	}()

	args := t.buildArgs(audioPath, outputDir)
	if output, err := t.runCommand(ctx, t.config.Binary, args...); err != nil {
		return nil, &TranscriptionError{Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))}
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outputDir, base+".json")

	payload, err := loadPayload(jsonPath)
	if err != nil {
		return nil, &TranscriptionError{Err: err}
	}

	segments := normalizeSegments(payload)
	log.Printf("[ASR] Transcription completed with %d segments", len(segments))
	return segments, nil
}

// buildArgs constructs the Whisper CLI invocation. Chunked decoding with a
// stride overlap avoids losing words on chunk boundaries; half precision is
// only used on CUDA devices.
func (t *Transcriber) buildArgs(audioPath, outputDir string) []string {
	args := []string{
		audioPath,
		"--model", t.config.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--chunk_length", strconv.Itoa(t.config.ChunkLengthS),
		"--stride_length", strconv.Itoa(t.config.StrideLengthS),
		"--device", t.config.Device,
	}
	if t.config.Device == "cuda" {
		args = append(args, "--fp16", "True")
	} else {
		args = append(args, "--fp16", "False")
	}
	return args
}

func loadPayload(jsonPath string) (*whisperPayload, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}
	return &payload, nil
}

// normalizeSegments converts the recognizer payload into the wire segment
// shape. Timestamped chunks become one segment each; a bare top-level text
// becomes a single segment at offset 0 with no duration.
func normalizeSegments(payload *whisperPayload) []models.TranscriptSegment {
	if len(payload.Segments) > 0 {
		segments := make([]models.TranscriptSegment, 0, len(payload.Segments))
		for _, chunk := range payload.Segments {
			text := strings.TrimSpace(chunk.Text)
			if text == "" {
				continue
			}
			duration := int((chunk.End - chunk.Start) * 1000)
			segments = append(segments, models.TranscriptSegment{
				Offset:   int(chunk.Start * 1000),
				Text:     text,
				Duration: &duration,
			})
		}
		return segments
	}

	if text := strings.TrimSpace(payload.Text); text != "" {
		return []models.TranscriptSegment{{Offset: 0, Text: text}}
	}

	return nil
}
