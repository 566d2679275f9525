// Package cache stores successful GET response bodies for the CLI.
//
// Entries are keyed by method, full request URL and access token, so two
// profiles never share an entry. Default TTL is 5 minutes. Disable with
// TL_NO_CACHE=1.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultTTL = 5 * time.Minute
	// EnvDir overrides the file cache directory.
	EnvDir = "TL_CACHE_DIR"
)

// Store is a TTL cache of raw response bodies.
type Store interface {
	// Get returns the cached body for key, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Put stores body under key. Failures are silent: a cache that cannot
	// write behaves like an empty one.
	Put(ctx context.Context, key string, body []byte)
	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error
}

// Key derives the cache key of a request.
func Key(method, fullURL, tokenKey string) string {
	sum := sha1.Sum([]byte(strings.ToUpper(method) + "\n" + fullURL + "\n" + tokenKey))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	CachedAt time.Time       `json:"cached_at"`
	Body     json.RawMessage `json:"body"`
}

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore creates a FileStore. A non-positive ttl means DefaultTTL.
func NewFileStore(dir string, ttl time.Duration) *FileStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false
	}
	if s.now().Sub(e.CachedAt) > s.ttl {
		return nil, false
	}
	return e.Body, true
}

func (s *FileStore) Put(_ context.Context, key string, body []byte) {
	if !json.Valid(body) {
		return
	}
	data, err := json.Marshal(entry{CachedAt: s.now(), Body: body})
	if err != nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}

	// Write to a temp file then rename so readers never see a partial entry.
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
	}
}

// Clear removes cache files from the directory. Only names matching the key
// scheme are touched.
func (s *FileStore) Clear(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !isCacheFilename(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// DefaultDir returns "$XDG_CACHE_HOME/tweetlite" or the platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "tweetlite"), nil
}

// isCacheFilename matches "<40 hex>.json".
func isCacheFilename(name string) bool {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok || len(base) != sha1.Size*2 {
		return false
	}
	_, err := hex.DecodeString(base)
	return err == nil
}
