package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/store"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// CachedSummaries holds a year of summaries and whether the cache served them.
type CachedSummaries struct {
	Monthly  []model.MonthlySummary
	CacheHit bool
	// Load is set when the workbook had to be read.
	Load *LoadResult
}

// SummariesWithCache returns the monthly summaries of year. When the
// workbook's mtime and size match what the cache recorded for the same year
// and options, the workbook is not opened at all.
func SummariesWithCache(path string, locale workbook.Locale, year int, opts Options, cache *store.Cache) (*CachedSummaries, error) {
	key := store.Key{Path: cacheKeyPath(path), Year: year, Options: opts.Key()}

	info, statErr := os.Stat(path)
	if statErr == nil {
		tracked, ok, err := cache.Tracked(key)
		if err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}
		if ok && tracked.MtimeNs == info.ModTime().UnixNano() && tracked.SizeBytes == info.Size() {
			monthly, err := cache.LoadSummaries(key)
			if err != nil {
				return nil, fmt.Errorf("loading cached summaries: %w", err)
			}
			if len(monthly) == 12 {
				return &CachedSummaries{Monthly: monthly, CacheHit: true}, nil
			}
		}
	}

	lr, err := Load(path, locale, year)
	if err != nil {
		return nil, err
	}
	monthly := ComputeYear(lr.Book, year, opts)

	if statErr == nil {
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if err := cache.SaveSummaries(key, fi, monthly); err != nil {
			return nil, fmt.Errorf("writing cache: %w", err)
		}
	}

	return &CachedSummaries{Monthly: monthly, Load: lr}, nil
}

// InvalidateCache drops the cached summaries of the workbook at path.
func InvalidateCache(path string, cache *store.Cache) error {
	if err := cache.Invalidate(cacheKeyPath(path)); err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	return nil
}

func cacheKeyPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gbdash")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "gbdash")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "summaries.db")
}
