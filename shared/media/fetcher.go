package media

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strings"

	"clipwatch/shared/config"

	"github.com/google/uuid"
)

// DownloadError reports a failed audio download for one video.
type DownloadError struct {
	VideoID string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download audio for video %s", e.VideoID)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Fetcher materializes the audio track of a YouTube video as a local WAV
// file by shelling out to yt-dlp.
type Fetcher struct {
	config *config.DownloaderConfig

	// runCommand is swapped out in tests.
	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewFetcher(cfg *config.DownloaderConfig) *Fetcher {
	return &Fetcher{
		config: cfg,
		runCommand: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// OutputPath returns the temp path the fetched audio will be written to.
// The path carries a per-request token so concurrent requests for the same
// video never contend for one file.
func (f *Fetcher) OutputPath(videoID string) string {
	name := fmt.Sprintf("clipwatch-%s-%s.wav", videoID, uuid.NewString())
	return filepath.Join(f.config.TempDir, name)
}

// Fetch downloads the best available audio stream for videoID and transcodes
// it to WAV at outputPath. The caller owns the file and is responsible for
// removing it.
func (f *Fetcher) Fetch(ctx context.Context, videoID, outputPath string) error {
	log.Printf("[ASR] Downloading audio for video %s...", videoID)

	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "wav",
		"--audio-quality", f.config.AudioQuality,
		"--quiet",
		"--no-warnings",
		"--output", outputPath,
		WatchURL(videoID),
	}

	output, err := f.runCommand(ctx, f.config.Binary, args...)
	if err != nil {
		log.Printf("[ASR] Failed to download audio: %v: %s", err, strings.TrimSpace(string(output)))
		return &DownloadError{VideoID: videoID, Err: err}
	}

	log.Printf("[ASR] Audio downloaded to %s", outputPath)
	return nil
}
