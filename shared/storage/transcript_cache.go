package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"clipwatch/internal/models"
)

// TranscriptCache persists recent transcripts keyed by video ID so repeated
// requests for the same video skip the download and transcription steps.
type TranscriptCache struct {
	filePath string
	entries  map[string]cacheEntry
	mu       sync.RWMutex
	maxAge   time.Duration
}

type cacheEntry struct {
	VideoID  string                     `json:"video_id"`
	Segments []models.TranscriptSegment `json:"segments"`
	CachedAt time.Time                  `json:"cached_at"`
}

// NewTranscriptCache creates a transcript cache backed by a JSON file under
// dataDir. Entries older than maxAge are dropped on load.
func NewTranscriptCache(dataDir string, maxAge time.Duration) (*TranscriptCache, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cache := &TranscriptCache{
		filePath: filepath.Join(dataDir, "transcripts.json"),
		entries:  make(map[string]cacheEntry),
		maxAge:   maxAge,
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load transcript cache: %w", err)
	}

	cache.prune()

	return cache, nil
}

// Get returns the cached transcript for videoID if one exists and is still
// fresh.
func (tc *TranscriptCache) Get(videoID string) ([]models.TranscriptSegment, bool) {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	entry, exists := tc.entries[videoID]
	if !exists || time.Since(entry.CachedAt) >= tc.maxAge {
		return nil, false
	}
	return entry.Segments, true
}

// Put stores a transcript for videoID and persists the cache.
func (tc *TranscriptCache) Put(videoID string, segments []models.TranscriptSegment) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.entries[videoID] = cacheEntry{
		VideoID:  videoID,
		Segments: segments,
		CachedAt: time.Now(),
	}
	return tc.save()
}

// Count returns the number of cached transcripts.
func (tc *TranscriptCache) Count() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.entries)
}

// prune removes entries older than maxAge.
func (tc *TranscriptCache) prune() {
	cutoff := time.Now().Add(-tc.maxAge)

	for videoID, entry := range tc.entries {
		if entry.CachedAt.Before(cutoff) {
			delete(tc.entries, videoID)
		}
	}
}

// load reads cached transcripts from the JSON file.
func (tc *TranscriptCache) load() error {
	file, err := os.Open(tc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No cache file yet, start empty
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var entries []cacheEntry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode cache data: %w", err)
	}

	for _, entry := range entries {
		tc.entries[entry.VideoID] = entry
	}
	return nil
}

// save writes the cache to disk. Callers must hold the write lock.
func (tc *TranscriptCache) save() error {
	entries := make([]cacheEntry, 0, len(tc.entries))
	for _, entry := range tc.entries {
		entries = append(entries, entry)
	}

	file, err := os.Create(tc.filePath)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(entries); err != nil {
		return fmt.Errorf("failed to encode cache data: %w", err)
	}
	return nil
}
