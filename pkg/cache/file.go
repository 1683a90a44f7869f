package cache

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// FileCache keeps one JSON file per entry, fanned out over 256
// subdirectories by key hash.
type FileCache struct {
	fs  billy.Filesystem
	now func() time.Time
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return NewFileCacheFS(osfs.New(dir)), nil
}

// NewFileCacheFS opens a file cache on an existing filesystem.
func NewFileCacheFS(fs billy.Filesystem) *FileCache {
	return &FileCache{fs: fs, now: time.Now}
}

// DefaultDir returns the per-user cache directory for sketchtower.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "sketchtower"), nil
}

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns the entry for key. Expired and unreadable entries are removed
// and reported as misses.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	p := c.path(key)
	raw, err := util.ReadFile(c.fs, p)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = c.fs.Remove(p)
		return nil, false, nil
	}
	if !e.ExpiresAt.IsZero() && c.now().After(e.ExpiresAt) {
		_ = c.fs.Remove(p)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the entry for key. A non-positive ttl never expires.
func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := fileEntry{Data: data}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p := c.path(key)
	if err := c.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return err
	}
	return util.WriteFile(c.fs, p, raw, 0o644)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	err := c.fs.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	n := 0
	err := c.walk(func(p string, _ os.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.fs.Remove(p); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}

// Stats counts the entries and their size on disk.
func (c *FileCache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.walk(func(_ string, info os.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Entries++
		s.Bytes += info.Size()
		return nil
	})
	return s, err
}

func (c *FileCache) walk(fn func(p string, info os.FileInfo) error) error {
	dirs, err := c.fs.ReadDir("/")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, d := range dirs {
		if !d.IsDir() || len(d.Name()) != 2 {
			continue
		}
		files, err := c.fs.ReadDir(d.Name())
		if err != nil {
			return err
		}
		for _, f := range files {
			if f.IsDir() || path.Ext(f.Name()) != ".json" {
				continue
			}
			if err := fn(path.Join(d.Name(), f.Name()), f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return path.Join(h[:2], h[2:]+".json")
}

var (
	_ Cache   = (*FileCache)(nil)
	_ Clearer = (*FileCache)(nil)
	_ Statter = (*FileCache)(nil)
)
