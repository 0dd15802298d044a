// Package driver orchestrates project loading: it reads the project
// file, fetches and parses the symbol manifests it lists, and binds
// them into one type registry. Parsing runs in parallel; binding is
// sequential so the resulting symbol graph is deterministic.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"phlox/internal/manifest"
	"phlox/internal/observ"
)

// ProjectFileName is the file the driver looks for at the project root.
const ProjectFileName = "phlox.toml"

// Project mirrors the [project] table of phlox.toml.
type Project struct {
	Name      string   `toml:"name"`
	Manifests []string `toml:"manifests"`
}

type projectFile struct {
	Project Project `toml:"project"`
}

// Config controls one LoadProject run.
type Config struct {
	Root           string
	MaxDiagnostics int
	Jobs           int
	Cache          *SnapshotCache
	Timer          *observ.Timer
}

// Loaded is the outcome of loading a project.
type Loaded struct {
	Project  Project
	Files    []*manifest.File
	Result   *manifest.Result
	Digest   Digest
	CacheHit bool
}

// LoadProject reads phlox.toml under cfg.Root and loads every manifest
// it lists. Manifest files are read and parsed concurrently; the bind
// into the registry happens afterwards, in listed order.
func LoadProject(ctx context.Context, cfg Config) (*Loaded, error) {
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = 256
	}
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	idx := timerBegin(cfg.Timer, "project")
	proj, err := readProjectFile(cfg.Root)
	if err != nil {
		return nil, err
	}
	timerEnd(cfg.Timer, idx, proj.Name)

	if len(proj.Manifests) == 0 {
		return nil, fmt.Errorf("%s lists no manifests", ProjectFileName)
	}

	idx = timerBegin(cfg.Timer, "read")
	raw := make([][]byte, len(proj.Manifests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(proj.Manifests)))
	for i, rel := range proj.Manifests {
		i, rel := i, rel
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			data, err := os.ReadFile(filepath.Join(cfg.Root, rel))
			if err != nil {
				return fmt.Errorf("manifest %s: %w", rel, err)
			}
			raw[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	key := combineDigest(raw)
	timerEnd(cfg.Timer, idx, fmt.Sprintf("%d files", len(raw)))

	loaded := &Loaded{Project: proj, Digest: key}

	idx = timerBegin(cfg.Timer, "parse")
	if snap, ok := snapshotGet(cfg.Cache, key); ok {
		loaded.Files = snap.Files()
		loaded.CacheHit = true
	} else {
		files := make([]*manifest.File, len(raw))
		g, gctx = errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(raw)))
		for i := range raw {
			i := i
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				f, err := manifest.Parse(string(raw[i]))
				if err != nil {
					return fmt.Errorf("manifest %s: %w", proj.Manifests[i], err)
				}
				files[i] = f
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		loaded.Files = files
		snapshotPut(cfg.Cache, key, files)
	}
	note := "parsed"
	if loaded.CacheHit {
		note = "cache hit"
	}
	timerEnd(cfg.Timer, idx, note)

	idx = timerBegin(cfg.Timer, "bind")
	loaded.Result = manifest.Load(loaded.Files, cfg.MaxDiagnostics)
	timerEnd(cfg.Timer, idx, fmt.Sprintf("%d types", len(loaded.Result.Declared)))

	return loaded, nil
}

func readProjectFile(root string) (Project, error) {
	path := filepath.Join(root, ProjectFileName)
	var pf projectFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	return pf.Project, nil
}

func timerBegin(t *observ.Timer, name string) int {
	if t == nil {
		return -1
	}
	return t.Begin(name)
}

func timerEnd(t *observ.Timer, idx int, note string) {
	if t != nil {
		t.End(idx, note)
	}
}
