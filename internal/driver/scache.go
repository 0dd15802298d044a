package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"phlox/internal/manifest"
)

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// combineDigest hashes the manifest contents in listed order, so the
// key changes when any file changes or the list is reordered.
func combineDigest(raw [][]byte) Digest {
	h := sha256.New()
	for _, data := range raw {
		var n [8]byte
		for i, size := 0, len(data); i < 8; i++ {
			n[i] = byte(size >> (8 * i))
		}
		_, _ = h.Write(n[:])
		_, _ = h.Write(data)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Increment when Snapshot's wire format changes.
const snapshotSchemaVersion uint16 = 1

// Snapshot is the cached form of a project's parsed manifests. It lets
// a reload skip TOML parsing when no manifest changed; binding is
// always redone.
type Snapshot struct {
	Schema uint16
	Parsed []manifest.File
}

func (s *Snapshot) Files() []*manifest.File {
	out := make([]*manifest.File, len(s.Parsed))
	for i := range s.Parsed {
		out[i] = &s.Parsed[i]
	}
	return out
}

// SnapshotCache stores snapshots on disk, keyed by content digest.
// Safe for concurrent use.
type SnapshotCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenSnapshotCache initializes a snapshot cache at the standard
// per-user cache location.
func OpenSnapshotCache(app string) (*SnapshotCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SnapshotCache{dir: dir}, nil
}

// OpenSnapshotCacheAt initializes a snapshot cache rooted at an
// explicit directory.
func OpenSnapshotCacheAt(dir string) (*SnapshotCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SnapshotCache{dir: dir}, nil
}

func (c *SnapshotCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "snapshots", key.String()+".mp")
}

// Put serializes and writes a snapshot, replacing it atomically.
func (c *SnapshotCache) Put(key Digest, snap *Snapshot) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(snap); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a snapshot. A missing file or a schema mismatch is a miss,
// not an error.
func (c *SnapshotCache) Get(key Digest, out *Snapshot) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != snapshotSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *SnapshotCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func snapshotGet(c *SnapshotCache, key Digest) (*Snapshot, bool) {
	if c == nil {
		return nil, false
	}
	var snap Snapshot
	ok, err := c.Get(key, &snap)
	if err != nil || !ok {
		return nil, false
	}
	return &snap, true
}

func snapshotPut(c *SnapshotCache, key Digest, files []*manifest.File) {
	if c == nil {
		return
	}
	snap := &Snapshot{Schema: snapshotSchemaVersion, Parsed: make([]manifest.File, len(files))}
	for i, f := range files {
		snap.Parsed[i] = *f
	}
	// Cache misses on the next run are merely slower, not wrong.
	_ = c.Put(key, snap)
}
