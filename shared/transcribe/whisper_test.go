package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"clipwatch/shared/config"
)

func testConfig() *config.WhisperConfig {
	return &config.WhisperConfig{
		Binary:        "whisper",
		Model:         "large-v3",
		Device:        "cpu",
		ChunkLengthS:  30,
		StrideLengthS: 5,
	}
}

// outputDirFromArgs digs the --output_dir value out of a CLI invocation.
func outputDirFromArgs(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "--output_dir" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatal("no --output_dir in args")
	return ""
}

func TestTranscribeChunkedPayload(t *testing.T) {
	transcriber := NewTranscriber(testConfig())
	transcriber.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		payload := `{
			"text": " Hello there. General Kenobi.",
			"segments": [
				{"start": 0.0, "end": 2.5, "text": " Hello there."},
				{"start": 2.5, "end": 5.0, "text": " General Kenobi."},
				{"start": 5.0, "end": 6.0, "text": "   "}
			]
		}`
		path := filepath.Join(outputDirFromArgs(t, args), "audio.json")
		if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
			return nil, err
		}
		return nil, nil
	}

	segments, err := transcriber.Transcribe(context.Background(), "/tmp/audio.wav")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if len(segments) != 2 {
		t.Fatalf("Transcribe() returned %d segments, want 2 (blank chunk dropped)", len(segments))
	}

	if segments[0].Offset != 0 || segments[0].Text != "Hello there." {
		t.Errorf("segment 0 = %+v, want offset 0 text %q", segments[0], "Hello there.")
	}
	if segments[0].Duration == nil || *segments[0].Duration != 2500 {
		t.Errorf("segment 0 duration = %v, want 2500", segments[0].Duration)
	}
	if segments[1].Offset != 2500 {
		t.Errorf("segment 1 offset = %d, want 2500", segments[1].Offset)
	}

	// Offsets must be non-decreasing in chunk order
	for i := 1; i < len(segments); i++ {
		if segments[i].Offset < segments[i-1].Offset {
			t.Errorf("segment %d offset %d decreases from %d", i, segments[i].Offset, segments[i-1].Offset)
		}
	}
}

func TestTranscribeSingleTextPayload(t *testing.T) {
	transcriber := NewTranscriber(testConfig())
	transcriber.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		payload := `{"text": " A single untimed result. "}`
		path := filepath.Join(outputDirFromArgs(t, args), "clip.json")
		return nil, os.WriteFile(path, []byte(payload), 0644)
	}

	segments, err := transcriber.Transcribe(context.Background(), "/tmp/clip.wav")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if len(segments) != 1 {
		t.Fatalf("Transcribe() returned %d segments, want 1", len(segments))
	}
	if segments[0].Offset != 0 {
		t.Errorf("offset = %d, want 0", segments[0].Offset)
	}
	if segments[0].Duration != nil {
		t.Errorf("duration = %v, want absent", *segments[0].Duration)
	}
	if segments[0].Text != "A single untimed result." {
		t.Errorf("text = %q, want trimmed text", segments[0].Text)
	}
}

func TestTranscribeNoSpeech(t *testing.T) {
	transcriber := NewTranscriber(testConfig())
	transcriber.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		payload := `{"text": "", "segments": []}`
		path := filepath.Join(outputDirFromArgs(t, args), "silence.json")
		return nil, os.WriteFile(path, []byte(payload), 0644)
	}

	segments, err := transcriber.Transcribe(context.Background(), "/tmp/silence.wav")
	if err != nil {
		t.Fatalf("Transcribe() error: %v, empty output is not an error", err)
	}
	if len(segments) != 0 {
		t.Errorf("Transcribe() returned %d segments, want 0", len(segments))
	}
}

func TestTranscribeCommandFailure(t *testing.T) {
	transcriber := NewTranscriber(testConfig())
	transcriber.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("CUDA out of memory"), fmt.Errorf("exit status 1")
	}

	_, err := transcriber.Transcribe(context.Background(), "/tmp/audio.wav")

	var transcriptionErr *TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("Transcribe() error = %v, want *TranscriptionError", err)
	}
}

func TestBuildArgsDeviceSelection(t *testing.T) {
	tests := []struct {
		name     string
		device   string
		wantFP16 string
	}{
		{"CPU uses full precision", "cpu", "False"},
		{"CUDA uses half precision", "cuda", "True"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Device = tt.device
			transcriber := NewTranscriber(cfg)

			args := transcriber.buildArgs("/tmp/a.wav", "/tmp/out")

			got := ""
			for i, arg := range args {
				if arg == "--fp16" && i+1 < len(args) {
					got = args[i+1]
				}
			}
			if got != tt.wantFP16 {
				t.Errorf("--fp16 = %q, want %q", got, tt.wantFP16)
			}
		})
	}
}
