package sweeper

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"clipwatch/shared/config"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes orphaned audio artifacts from the temp
// directory. Request handlers clean up after themselves, but a crashed or
// killed process leaves its WAV behind; the sweeper is the backstop.
type Sweeper struct {
	dir      string
	maxAge   time.Duration
	schedule string
	cron     *cron.Cron
}

func New(cfg *config.Config) *Sweeper {
	return &Sweeper{
		dir:      cfg.Downloader.TempDir,
		maxAge:   time.Duration(cfg.Sweeper.MaxAgeMinutes) * time.Minute,
		schedule: cfg.Sweeper.Schedule,
		// Prevent overlapping sweeps
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start registers the sweep job and starts the cron loop in the background.
func (s *Sweeper) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if removed, err := s.SweepOnce(); err != nil {
			log.Printf("[Sweeper] Sweep failed: %v", err)
		} else if removed > 0 {
			log.Printf("[Sweeper] Removed %d orphaned audio file(s)", removed)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add sweep job: %w", err)
	}

	s.cron.Start()
	log.Printf("[Sweeper] Started with schedule %q (max age %v)", s.schedule, s.maxAge)
	return nil
}

// Stop halts the cron loop. A sweep already in flight runs to completion.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// SweepOnce removes audio artifacts older than maxAge and returns how many
// were deleted. Individual removal failures are logged and do not stop the
// sweep.
func (s *Sweeper) SweepOnce() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "clipwatch-*.wav"))
	if err != nil {
		return 0, fmt.Errorf("failed to scan temp dir: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Printf("[Sweeper] Failed to remove %s: %v", path, err)
			continue
		}
		removed++
	}

	return removed, nil
}
