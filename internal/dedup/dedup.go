// Package dedup remembers which job URLs earlier scrape runs already opened,
// so the collector does not visit the same posting twice within the expiry window.
package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultExpiry is how long a URL stays seen.
const DefaultExpiry = 30 * 24 * time.Hour

// SeenCache is implemented by JobCache (file) and RedisCache.
type SeenCache interface {
	IsSeen(ctx context.Context, url string) bool
	Add(ctx context.Context, urls []string) error
}

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// JobCache is a JSON-file backed SeenCache.
type JobCache struct {
	mu       sync.Mutex
	filePath string
	expiry   time.Duration
	seen     map[string]int64
	logger   *slog.Logger
	now      func() time.Time
}

// NewJobCache creates or loads seen_jobs.json under cacheDir. Entries older
// than expiry are dropped on load.
func NewJobCache(cacheDir string, expiry time.Duration, logger *slog.Logger) (*JobCache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	cache := &JobCache{
		filePath: filepath.Join(cacheDir, "seen_jobs.json"),
		expiry:   expiry,
		seen:     make(map[string]int64),
		logger:   logger,
		now:      time.Now,
	}
	if err := cache.load(); err != nil {
		return nil, err
	}
	return cache, nil
}

// IsSeen checks if a URL has already been opened.
func (jc *JobCache) IsSeen(_ context.Context, url string) bool {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	_, exists := jc.seen[url]
	return exists
}

// Add marks urls as seen and rewrites the file when anything changed.
func (jc *JobCache) Add(_ context.Context, urls []string) error {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	now := jc.now().UnixMilli()
	changed := false
	for _, url := range urls {
		if _, exists := jc.seen[url]; !exists {
			jc.seen[url] = now
			changed = true
		}
	}

	if !changed {
		return nil
	}
	return jc.save()
}

func (jc *JobCache) Len() int {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return len(jc.seen)
}

func (jc *JobCache) load() error {
	data, err := os.ReadFile(jc.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", jc.filePath, err)
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		//a corrupt cache only costs revisits
		jc.logger.Warn("ignoring unreadable seen cache", "path", jc.filePath, "error", err)
		return nil
	}

	cutoff := jc.now().Add(-jc.expiry).UnixMilli()
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > cutoff {
			jc.seen[e.URL] = e.Timestamp
			loaded++
		}
	}
	jc.logger.Info("loaded seen jobs", "count", loaded, "expired", len(entries)-loaded)
	return nil
}

// save writes the current cache to disk; the caller holds mu.
func (jc *JobCache) save() error {
	entries := make([]seenEntry, 0, len(jc.seen))
	for url, ts := range jc.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal seen jobs: %w", err)
	}
	if err := os.WriteFile(jc.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", jc.filePath, err)
	}
	jc.logger.Debug("saved seen jobs", "count", len(entries))
	return nil
}
