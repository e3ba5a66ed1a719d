package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Downloader DownloaderConfig `yaml:"downloader"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	AI         AIConfig         `yaml:"ai"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Cache      CacheConfig      `yaml:"cache"`
	Sweeper    SweeperConfig    `yaml:"sweeper"`
}

type ServerConfig struct {
	Port int `yaml:"port" env:"PORT"`
}

type DownloaderConfig struct {
	Binary       string `yaml:"binary"`
	AudioQuality string `yaml:"audio_quality"`
	TempDir      string `yaml:"temp_dir"`
}

type WhisperConfig struct {
	Binary        string `yaml:"binary"`
	Model         string `yaml:"model"`
	Device        string `yaml:"device"`
	ChunkLengthS  int    `yaml:"chunk_length_s"`
	StrideLengthS int    `yaml:"stride_length_s"`
}

type AIConfig struct {
	GeminiAPIKey   string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type YouTubeConfig struct {
	APIKey string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
}

type CacheConfig struct {
	DataDir     string `yaml:"data_dir"`
	MaxAgeHours int    `yaml:"max_age_hours"`
	Disabled    bool   `yaml:"disabled"`
}

type SweeperConfig struct {
	Schedule      string `yaml:"schedule"`
	MaxAgeMinutes int    `yaml:"max_age_minutes"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.Server.Port == 0 {
		if port := os.Getenv("PORT"); port != "" {
			if _, err := fmt.Sscanf(port, "%d", &cfg.Server.Port); err != nil {
				return nil, fmt.Errorf("invalid PORT value %q: %w", port, err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Downloader.Binary == "" {
		c.Downloader.Binary = "yt-dlp"
	}
	if c.Downloader.AudioQuality == "" {
		c.Downloader.AudioQuality = "192"
	}
	if c.Downloader.TempDir == "" {
		c.Downloader.TempDir = os.TempDir()
	}
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = "whisper"
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "large-v3"
	}
	if c.Whisper.Device == "" {
		c.Whisper.Device = "cpu"
	}
	if c.Whisper.ChunkLengthS == 0 {
		c.Whisper.ChunkLengthS = 30
	}
	if c.Whisper.StrideLengthS == 0 {
		c.Whisper.StrideLengthS = 5
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.0-flash-exp"
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 30
	}
	if c.Cache.DataDir == "" {
		c.Cache.DataDir = "data"
	}
	if c.Cache.MaxAgeHours == 0 {
		c.Cache.MaxAgeHours = 24
	}
	if c.Sweeper.Schedule == "" {
		c.Sweeper.Schedule = "@every 30m"
	}
	if c.Sweeper.MaxAgeMinutes == 0 {
		c.Sweeper.MaxAgeMinutes = 120
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", c.Server.Port)
	}
	if c.Whisper.Device != "cpu" && c.Whisper.Device != "cuda" {
		return fmt.Errorf("whisper device must be \"cpu\" or \"cuda\", got %q", c.Whisper.Device)
	}
	if c.Whisper.StrideLengthS >= c.Whisper.ChunkLengthS {
		return fmt.Errorf("whisper stride (%ds) must be shorter than chunk length (%ds)",
			c.Whisper.StrideLengthS, c.Whisper.ChunkLengthS)
	}
	if !filepath.IsAbs(c.Downloader.TempDir) {
		return fmt.Errorf("downloader temp_dir must be an absolute path, got %q", c.Downloader.TempDir)
	}
	// The Gemini key is intentionally not required here: the transcribe
	// endpoint works without it and the analyze endpoint reports the
	// missing credential in-band.
	return nil
}
