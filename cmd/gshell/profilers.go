package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
)

type profileKind int

const (
	cpuProfile profileKind = iota
	allocsProfile
)

func (k profileKind) String() string {
	if k == cpuProfile {
		return "cpu"
	}

	return "allocs"
}

// profiler records a CPU or allocations profile of the whole session. A nil
// profiler, as returned for an empty path, does nothing.
type profiler struct {
	kind profileKind
	path string
	file *os.File
}

func startProfiler(kind profileKind, path string) (*profiler, error) {
	if path == "" {
		return nil, nil //nolint:nilnil
	}

	prof := &profiler{
		kind: kind,
		path: path,
	}

	if kind != cpuProfile {
		return prof, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("(main-profiler) failed to create cpu profile: %w", err)
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()

		return nil, fmt.Errorf("(main-profiler) failed to start cpu profile: %w", err)
	}

	prof.file = f

	return prof, nil
}

// Stop finishes the profile and writes it to its file.
func (p *profiler) Stop() {
	if p == nil {
		return
	}

	if p.kind == cpuProfile {
		pprof.StopCPUProfile()

		if err := p.file.Close(); err != nil {
			slog.Error("Could not close cpu profile.", "err", err)
		}

		return
	}

	f, err := os.Create(p.path)
	if err != nil {
		slog.Error("Could not create profile.", "kind", p.kind, "err", err)

		return
	}
	defer f.Close()

	if err := pprof.Lookup(p.kind.String()).WriteTo(f, 0); err != nil {
		slog.Error("Could not write profile.", "kind", p.kind, "err", err)
	}
}
