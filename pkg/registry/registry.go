// Package registry discovers, validates, and merges the charter and ego
// documents of an egokit policy registry directory. The registry is
// read-only from this package's perspective; every invocation is a
// fresh load and merges always produce new values.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/egokit/egokit/api"
	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/api/v1beta1/egos"
	"github.com/egokit/egokit/pkg/yaml"
)

const (
	// GlobalScope is the name of the lowest-precedence scope.
	GlobalScope = "global"

	charterFile       = "charter.yaml"
	egoDir            = "ego"
	schemasDir        = "schemas"
	charterSchemaFile = "charter.schema.json"
	egoSchemaFile     = "ego.schema.json"
)

// Registry reads a policy registry directory. The directory path is an
// explicit constructor input; the registry holds no process-global
// state.
type Registry struct {
	charterValidator Validator
	egoValidator     Validator
	path             string
}

// New creates a [Registry] for the given directory. It fails with a
// [NotFoundError] if the directory does not exist. Schema artifacts
// under `schemas/` override the embedded defaults when present, so the
// schemas can evolve independently of the binary.
func New(path string) (*Registry, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Kind: "Policy registry", Path: path}
	}

	r := &Registry{
		path:             path,
		charterValidator: charters.DefaultValidator,
		egoValidator:     egos.DefaultValidator,
	}

	r.charterValidator = localValidator(
		filepath.Join(path, schemasDir, charterSchemaFile), r.charterValidator)
	r.egoValidator = localValidator(
		filepath.Join(path, schemasDir, egoSchemaFile), r.egoValidator)

	return r, nil
}

// localValidator loads a registry-local schema artifact, falling back
// to the provided default if the file is absent or unreadable.
//
//nolint:ireturn // Validator interface return is intentional.
func localValidator(schemaPath string, fallback Validator) Validator {
	data, err := api.ReadFile(schemaPath)
	if err != nil {
		return fallback
	}

	v, err := yaml.NewValidator("/"+filepath.Base(schemaPath), data)
	if err != nil {
		slog.Warn("invalid registry-local schema, using embedded schema",
			slog.String("path", schemaPath),
			slog.Any("error", err),
		)

		return fallback
	}

	slog.Debug("using registry-local schema", slog.String("path", schemaPath))

	return v
}

// Path returns the registry directory path.
func (r *Registry) Path() string {
	return r.path
}

// CharterPath returns the path of the charter document.
func (r *Registry) CharterPath() string {
	return filepath.Join(r.path, charterFile)
}

// EgoPath resolves a scope name to its ego document path:
// `global` maps to `ego/global.yaml`, any other scope path `a/b` maps
// to `ego/a/b.yaml`.
func (r *Registry) EgoPath(scope string) string {
	parts := append([]string{r.path, egoDir}, strings.Split(scope, "/")...)
	parts[len(parts)-1] += ".yaml"

	return filepath.Join(parts...)
}

// LoadCharter reads the charter document from the registry root.
// With validate set, the raw document is checked against the charter
// JSON schema before being parsed into the domain model.
func (r *Registry) LoadCharter(validate bool) (*charters.Charter, error) {
	path := r.CharterPath()

	l, err := NewLoaderFromFile(path, charters.New, r.charterValidator)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Kind: "Charter", Path: path}
		}

		return nil, fmt.Errorf("load charter: %w", err)
	}

	if validate {
		err = l.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid charter %q: %w", path, err)
		}
	}

	charter, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load charter %q: %w", path, err)
	}

	// Structural checks apply even when schema validation is skipped.
	err = charter.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid charter %q: %w", path, err)
	}

	return charter, nil
}

// LoadEgoConfig reads the ego document for the given scope.
func (r *Registry) LoadEgoConfig(scope string, validate bool) (*egos.EgoConfig, error) {
	path := r.EgoPath(scope)

	l, err := NewLoaderFromFile(path, egos.New, r.egoValidator)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Kind: "Ego config for scope " + scope, Path: path}
		}

		return nil, fmt.Errorf("load ego config: %w", err)
	}

	if validate {
		err = l.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid ego config %q: %w", path, err)
		}
	}

	charter, err := l.Load()
	if err != nil {
		return nil, fmt.Errorf("load ego config %q: %w", path, err)
	}

	return charter.Ego, nil
}

// DiscoverEgoScopes walks the `ego/` subtree and returns every
// resolvable scope name, sorted.
func (r *Registry) DiscoverEgoScopes() ([]string, error) {
	root := filepath.Join(r.path, egoDir)

	var scopes []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative scope path: %w", err)
		}

		scope := filepath.ToSlash(strings.TrimSuffix(rel, ext))
		scopes = append(scopes, scope)

		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Kind: "Ego directory", Path: root}
		}

		return nil, fmt.Errorf("discover ego scopes: %w", err)
	}

	sort.Strings(scopes)

	return scopes, nil
}
