package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"clipwatch/shared/config"
)

func testConfig(t *testing.T) *config.DownloaderConfig {
	return &config.DownloaderConfig{
		Binary:       "yt-dlp",
		AudioQuality: "192",
		TempDir:      t.TempDir(),
	}
}

func TestWatchURL(t *testing.T) {
	got := WatchURL("dQw4w9WgXcQ")
	want := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	if got != want {
		t.Errorf("WatchURL() = %s, want %s", got, want)
	}
}

func TestOutputPathUniquePerRequest(t *testing.T) {
	fetcher := NewFetcher(testConfig(t))

	first := fetcher.OutputPath("dQw4w9WgXcQ")
	second := fetcher.OutputPath("dQw4w9WgXcQ")

	if first == second {
		t.Errorf("OutputPath() returned the same path twice: %s", first)
	}
	for _, path := range []string{first, second} {
		if !strings.Contains(path, "clipwatch-dQw4w9WgXcQ-") || !strings.HasSuffix(path, ".wav") {
			t.Errorf("OutputPath() = %s, want clipwatch-<id>-<token>.wav shape", path)
		}
	}
}

func TestFetchInvokesDownloader(t *testing.T) {
	cfg := testConfig(t)
	fetcher := NewFetcher(cfg)

	var gotName string
	var gotArgs []string
	fetcher.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, nil
	}

	outputPath := fetcher.OutputPath("dQw4w9WgXcQ")
	if err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ", outputPath); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if gotName != "yt-dlp" {
		t.Errorf("command = %s, want yt-dlp", gotName)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{
		"--format bestaudio/best",
		"--extract-audio",
		"--audio-format wav",
		"--audio-quality 192",
		"--output " + outputPath,
		WatchURL("dQw4w9WgXcQ"),
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args %q missing %q", joined, want)
		}
	}
}

func TestFetchFailureReturnsDownloadError(t *testing.T) {
	fetcher := NewFetcher(testConfig(t))
	underlying := fmt.Errorf("exit status 1")
	fetcher.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("ERROR: Video unavailable"), underlying
	}

	err := fetcher.Fetch(context.Background(), "dQw4w9WgXcQ", "/tmp/out.wav")

	var downloadErr *DownloadError
	if !errors.As(err, &downloadErr) {
		t.Fatalf("Fetch() error = %v, want *DownloadError", err)
	}
	if downloadErr.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("DownloadError.VideoID = %s, want dQw4w9WgXcQ", downloadErr.VideoID)
	}
	if !errors.Is(err, underlying) {
		t.Error("DownloadError does not wrap the underlying cause")
	}
	if err.Error() != "failed to download audio for video dQw4w9WgXcQ" {
		t.Errorf("Error() = %q, want download failure message", err.Error())
	}
}
