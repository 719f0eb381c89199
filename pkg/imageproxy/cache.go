package imageproxy

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultTTL is how long a cached image stays valid on disk.
	DefaultTTL = 24 * time.Hour

	// memoryEntries bounds the in-memory front cache. Entries above
	// memoryEntryLimit bytes are served from disk only.
	memoryEntries    = 256
	memoryEntryLimit = 1 << 20

	dataSuffix = ".bin"
	metaSuffix = ".ct"
)

type memoryEntry struct {
	data        []byte
	contentType string
	storedAt    time.Time
}

// Cache stores fetched image bytes on disk keyed by the MD5 of the source
// URL, with a bounded LRU front for hot entries. Writes are whole-file and
// unlocked; concurrent writers of the same key produce identical bytes.
type Cache struct {
	dir string
	ttl time.Duration
	hot *lru.Cache[string, memoryEntry]
}

func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	hot, err := lru.New[string, memoryEntry](memoryEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl, hot: hot}, nil
}

// Key derives the cache key for a source URL.
func Key(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached bytes and content type for key, or ok=false when
// the entry is absent or older than the TTL.
func (c *Cache) Get(key string) (data []byte, contentType string, ok bool) {
	if entry, hit := c.hot.Get(key); hit {
		if time.Since(entry.storedAt) < c.ttl {
			return entry.data, entry.contentType, true
		}
		c.hot.Remove(key)
	}

	dataPath := filepath.Join(c.dir, key+dataSuffix)
	info, err := os.Stat(dataPath)
	if err != nil {
		return nil, "", false
	}
	if time.Since(info.ModTime()) >= c.ttl {
		return nil, "", false
	}
	data, err = os.ReadFile(dataPath)
	if err != nil {
		return nil, "", false
	}
	meta, err := os.ReadFile(filepath.Join(c.dir, key+metaSuffix))
	if err == nil {
		contentType = strings.TrimSpace(string(meta))
	}
	if len(data) <= memoryEntryLimit {
		c.hot.Add(key, memoryEntry{data: data, contentType: contentType, storedAt: info.ModTime()})
	}
	return data, contentType, true
}

// Put stores bytes and content type under key. A failed meta write leaves a
// usable entry without a content type.
func (c *Cache) Put(key string, data []byte, contentType string) error {
	if err := os.WriteFile(filepath.Join(c.dir, key+dataSuffix), data, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.dir, key+metaSuffix), []byte(contentType), 0o644); err != nil {
		return err
	}
	if len(data) <= memoryEntryLimit {
		c.hot.Add(key, memoryEntry{data: data, contentType: contentType, storedAt: time.Now()})
	}
	return nil
}

// Cleanup removes entries older than the TTL and returns how many were
// deleted. Orphaned meta files are removed alongside their data files.
func (c *Cache) Cleanup() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dataSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < c.ttl {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), dataSuffix)
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			continue
		}
		os.Remove(filepath.Join(c.dir, key+metaSuffix))
		c.hot.Remove(key)
		removed++
	}
	return removed, nil
}
