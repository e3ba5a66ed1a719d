package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
}

func TestLoadDefaults(t *testing.T) {
	writeConfig(t, "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Downloader.Binary != "yt-dlp" {
		t.Errorf("Downloader.Binary = %s, want yt-dlp", cfg.Downloader.Binary)
	}
	if cfg.Downloader.AudioQuality != "192" {
		t.Errorf("Downloader.AudioQuality = %s, want 192", cfg.Downloader.AudioQuality)
	}
	if cfg.Whisper.Model != "large-v3" {
		t.Errorf("Whisper.Model = %s, want large-v3", cfg.Whisper.Model)
	}
	if cfg.Whisper.ChunkLengthS != 30 || cfg.Whisper.StrideLengthS != 5 {
		t.Errorf("Whisper chunking = %d/%d, want 30/5", cfg.Whisper.ChunkLengthS, cfg.Whisper.StrideLengthS)
	}
	if cfg.AI.Model != "gemini-2.0-flash-exp" {
		t.Errorf("AI.Model = %s, want gemini-2.0-flash-exp", cfg.AI.Model)
	}
	if cfg.AI.TimeoutSeconds != 30 {
		t.Errorf("AI.TimeoutSeconds = %d, want 30", cfg.AI.TimeoutSeconds)
	}
	if cfg.AI.GeminiAPIKey != "" {
		t.Errorf("AI.GeminiAPIKey = %q, want empty (key is optional at load)", cfg.AI.GeminiAPIKey)
	}
	if cfg.Cache.MaxAgeHours != 24 {
		t.Errorf("Cache.MaxAgeHours = %d, want 24", cfg.Cache.MaxAgeHours)
	}
	if cfg.Sweeper.Schedule != "@every 30m" {
		t.Errorf("Sweeper.Schedule = %q, want @every 30m", cfg.Sweeper.Schedule)
	}
}

func TestLoadEnvFallbacks(t *testing.T) {
	writeConfig(t, "")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
	t.Setenv("YOUTUBE_API_KEY", "test-youtube-key")
	t.Setenv("PORT", "9001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.AI.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("AI.GeminiAPIKey = %s, want test-gemini-key", cfg.AI.GeminiAPIKey)
	}
	if cfg.YouTube.APIKey != "test-youtube-key" {
		t.Errorf("YouTube.APIKey = %s, want test-youtube-key", cfg.YouTube.APIKey)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
}

func TestLoadYamlOverridesAndValidation(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")
	t.Setenv("PORT", "")

	t.Run("YamlValues", func(t *testing.T) {
		writeConfig(t, `
server:
  port: 8080
whisper:
  model: base
  device: cuda
ai:
  model: gemini-2.5-flash
`)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if cfg.Server.Port != 8080 {
			t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
		}
		if cfg.Whisper.Model != "base" || cfg.Whisper.Device != "cuda" {
			t.Errorf("Whisper = %s/%s, want base/cuda", cfg.Whisper.Model, cfg.Whisper.Device)
		}
		if cfg.AI.Model != "gemini-2.5-flash" {
			t.Errorf("AI.Model = %s, want gemini-2.5-flash", cfg.AI.Model)
		}
	})

	t.Run("BadDevice", func(t *testing.T) {
		writeConfig(t, "whisper:\n  device: tpu\n")
		if _, err := Load(); err == nil {
			t.Error("Load() accepted invalid whisper device")
		}
	})

	t.Run("StrideNotShorterThanChunk", func(t *testing.T) {
		writeConfig(t, "whisper:\n  chunk_length_s: 10\n  stride_length_s: 10\n")
		if _, err := Load(); err == nil {
			t.Error("Load() accepted stride >= chunk length")
		}
	})

	t.Run("BadPort", func(t *testing.T) {
		writeConfig(t, "server:\n  port: 70000\n")
		if _, err := Load(); err == nil {
			t.Error("Load() accepted out-of-range port")
		}
	})
}
