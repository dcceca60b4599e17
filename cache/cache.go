// Package cache stores generated output on disk, keyed by a digest of the
// IR bytes and the generator options. Entries are msgpack-encoded.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/teranos/pxdgen/errors"
	"github.com/teranos/pxdgen/typegen"
)

// schemaVersion changes whenever Entry or the rendering changes shape.
// Entries with another schema are misses.
const schemaVersion uint16 = 1

// Key identifies one generation: same IR, same generator, same options.
type Key [sha256.Size]byte

// KeyFor digests the inputs of a generation. options must be a stable
// encoding of everything that affects output.
func KeyFor(irBytes []byte, generator, options string) Key {
	h := sha256.New()
	h.Write([]byte{byte(schemaVersion >> 8), byte(schemaVersion)})
	h.Write([]byte(generator))
	h.Write([]byte{0})
	h.Write([]byte(options))
	h.Write([]byte{0})
	h.Write(irBytes)

	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Entry is the on-disk form of a cached result.
type Entry struct {
	Schema     uint16
	HeaderPath string
	Output     string
	Scopes     []typegen.ScopeSummary
	Created    int64 // unix seconds
}

// Cache is a directory of entries. A nil *Cache is a valid, always-empty
// cache. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $XDG_CACHE_HOME/pxdgen, falling back to the user cache
// directory.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		var err error
		base, err = os.UserCacheDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to locate user cache directory")
		}
	}
	return filepath.Join(base, "pxdgen"), nil
}

// Open creates the cache directory if needed. An empty dir uses DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache directory %s", dir)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Key) string {
	s := key.String()
	return filepath.Join(c.dir, "entries", s[:2], s+".mp")
}

// Get returns the cached result for key, or an ErrCacheMiss error. Corrupt
// or outdated entries are removed and reported as misses.
func (c *Cache) Get(key Key) (*typegen.Result, error) {
	if c == nil {
		return nil, errors.ErrCacheMiss
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrCacheMiss
		}
		return nil, errors.Wrapf(err, "failed to read cache entry %s", p)
	}

	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil || e.Schema != schemaVersion {
		_ = os.Remove(p)
		return nil, errors.WithDetailf(errors.ErrCacheMiss, "discarded unreadable entry %s", key)
	}
	return &typegen.Result{HeaderPath: e.HeaderPath, Output: e.Output, Scopes: e.Scopes}, nil
}

// Put stores res under key, replacing any existing entry atomically.
func (c *Cache) Put(key Key, res *typegen.Result) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msgpack.Marshal(&Entry{
		Schema:     schemaVersion,
		HeaderPath: res.HeaderPath,
		Output:     res.Output,
		Scopes:     res.Scopes,
		Created:    time.Now().Unix(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode cache entry")
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create cache directory for %s", key)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create cache temp file")
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write cache entry %s", key)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write cache entry %s", key)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to commit cache entry %s", key)
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(c.dir, "entries")); err != nil {
		return errors.Wrapf(err, "failed to clear cache %s", c.dir)
	}
	return nil
}
