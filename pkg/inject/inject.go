// Package inject materializes a compiled artifact map under a target
// repository. Injection is idempotent: re-running with the same
// artifact map produces byte-identical files. Files belonging to other
// agent variants are never removed; the variants occupy disjoint path
// namespaces by construction.
//
// Concurrent invocations against the same target are not coordinated.
// This is a deliberate non-goal: injection is an interactive or CI
// operation, not a long-running service.
package inject

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// Injector writes an artifact map (relative path -> content).
type Injector interface {
	Inject(artifacts map[string]string) error
}

// FileInjector writes artifacts under a target directory, creating
// intermediate directories and truncating prior content.
type FileInjector struct {
	root string
}

// NewFileInjector creates a [FileInjector] rooted at the target
// repository directory.
func NewFileInjector(root string) *FileInjector {
	return &FileInjector{root: root}
}

// Inject writes every artifact, sorted by path for deterministic
// ordering.
func (fi *FileInjector) Inject(artifacts map[string]string) error {
	for _, rel := range slices.Sorted(maps.Keys(artifacts)) {
		path := filepath.Join(fi.root, filepath.FromSlash(rel))

		err := os.MkdirAll(filepath.Dir(path), 0o755)
		if err != nil {
			return fmt.Errorf("create directories for %s: %w", rel, err)
		}

		err = os.WriteFile(path, []byte(artifacts[rel]), 0o644) //nolint:gosec // G306: artifacts are project files.
		if err != nil {
			return fmt.Errorf("write artifact %s: %w", rel, err)
		}

		slog.Debug("wrote artifact",
			slog.String("path", path),
			slog.Int("bytes", len(artifacts[rel])),
		)
	}

	return nil
}

// DryRunInjector renders artifacts to a stream instead of writing
// files. The rendered content is byte-identical to what
// [FileInjector] would write.
type DryRunInjector struct {
	w io.Writer
}

// NewDryRunInjector creates a [DryRunInjector] writing to w.
func NewDryRunInjector(w io.Writer) *DryRunInjector {
	return &DryRunInjector{w: w}
}

// Inject renders every artifact with a path header, sorted by path.
func (di *DryRunInjector) Inject(artifacts map[string]string) error {
	for _, rel := range slices.Sorted(maps.Keys(artifacts)) {
		_, err := fmt.Fprintf(di.w, "--- %s ---\n%s\n", rel, artifacts[rel])
		if err != nil {
			return fmt.Errorf("render artifact %s: %w", rel, err)
		}
	}

	return nil
}
