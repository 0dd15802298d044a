package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"phlox/internal/observ"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "phlox.toml", `
[project]
name = "demo"
manifests = ["types/core.toml", "types/extra.toml"]
`)
	writeFile(t, root, "types/core.toml", `
[[type]]
name = "Box"
kind = "class"
params = ["T"]

[[type.member]]
name = "__construct"
kind = "method"
public = true
`)
	writeFile(t, root, "types/extra.toml", `
[[type]]
name = "Registry"
kind = "class"
base = "Box<string>"

[[construct]]
type = "Box"
args = ["int"]
`)
	return root
}

func TestLoadProject(t *testing.T) {
	root := writeProject(t)
	timer := observ.NewTimer()

	loaded, err := LoadProject(context.Background(), Config{Root: root, Timer: timer})
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if loaded.Project.Name != "demo" {
		t.Fatalf("project name = %q", loaded.Project.Name)
	}
	if loaded.CacheHit {
		t.Fatalf("first load reported a cache hit without a cache")
	}
	res := loaded.Result
	if res.Bag.HasErrors() {
		t.Fatalf("diagnostics: %v", res.Bag.Items())
	}
	// Box, Registry declared plus Box<string> and Box<int> constructed.
	if len(res.Declared) != 2 {
		t.Fatalf("declared %d types", len(res.Declared))
	}
	if len(res.Constructed) != 1 {
		t.Fatalf("constructed %d types", len(res.Constructed))
	}
	if report := timer.Report(); len(report.Phases) != 4 {
		t.Fatalf("timer recorded %d phases", len(report.Phases))
	}
}

func TestLoadProjectSnapshotCache(t *testing.T) {
	root := writeProject(t)
	cache, err := OpenSnapshotCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenSnapshotCacheAt: %v", err)
	}
	cfg := Config{Root: root, Cache: cache}

	first, err := LoadProject(context.Background(), cfg)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if first.CacheHit {
		t.Fatalf("cold cache reported a hit")
	}

	second, err := LoadProject(context.Background(), cfg)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if !second.CacheHit {
		t.Fatalf("warm cache missed")
	}
	if second.Digest != first.Digest {
		t.Fatalf("digest changed between identical loads")
	}
	if len(second.Result.Declared) != len(first.Result.Declared) {
		t.Fatalf("cached load declared %d types, fresh load %d",
			len(second.Result.Declared), len(first.Result.Declared))
	}

	// Changing a manifest must change the key and miss.
	writeFile(t, root, "types/extra.toml", `
[[type]]
name = "Registry"
kind = "class"
`)
	third, err := LoadProject(context.Background(), cfg)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if third.CacheHit {
		t.Fatalf("edited manifest still hit the cache")
	}
	if third.Digest == first.Digest {
		t.Fatalf("digest did not change after an edit")
	}
}

func TestLoadProjectErrors(t *testing.T) {
	root := t.TempDir()
	if _, err := LoadProject(context.Background(), Config{Root: root}); err == nil {
		t.Fatalf("missing project file did not error")
	}

	writeFile(t, root, "phlox.toml", `
[project]
name = "empty"
manifests = []
`)
	if _, err := LoadProject(context.Background(), Config{Root: root}); err == nil {
		t.Fatalf("empty manifest list did not error")
	}

	writeFile(t, root, "phlox.toml", `
[project]
name = "missing"
manifests = ["absent.toml"]
`)
	if _, err := LoadProject(context.Background(), Config{Root: root}); err == nil {
		t.Fatalf("missing manifest file did not error")
	}
}

func TestSnapshotCache(t *testing.T) {
	cache, err := OpenSnapshotCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenSnapshotCacheAt: %v", err)
	}
	key := combineDigest([][]byte{[]byte("hello")})

	var out Snapshot
	if ok, err := cache.Get(key, &out); err != nil || ok {
		t.Fatalf("empty cache Get = %v, %v", ok, err)
	}

	snap := &Snapshot{Schema: snapshotSchemaVersion}
	if err := cache.Put(key, snap); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, err := cache.Get(key, &out); err != nil || !ok {
		t.Fatalf("Get after Put = %v, %v", ok, err)
	}

	stale := &Snapshot{Schema: snapshotSchemaVersion + 1}
	if err := cache.Put(key, stale); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ok, err := cache.Get(key, &out); err != nil || ok {
		t.Fatalf("schema mismatch Get = %v, %v", ok, err)
	}
}

func TestCombineDigest(t *testing.T) {
	a := combineDigest([][]byte{[]byte("aa"), []byte("b")})
	b := combineDigest([][]byte{[]byte("a"), []byte("ab")})
	if a == b {
		t.Fatalf("length framing failed to separate shifted contents")
	}
	if a != combineDigest([][]byte{[]byte("aa"), []byte("b")}) {
		t.Fatalf("digest is not stable")
	}
}
