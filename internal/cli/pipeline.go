package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/api/v1beta1/egos"
	"github.com/egokit/egokit/pkg/registry"
)

// RegistryArgs are the flags shared by every command that reads a
// policy registry.
type RegistryArgs struct {
	Registry   string
	Scopes     []string
	NoValidate bool
}

func (ra *RegistryArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.Registry, "registry", "", "Path to the policy registry directory")
	cmd.Flags().StringArrayVar(&ra.Scopes, "scope", nil,
		"Scope to activate; repeatable, precedence increases with position")
	cmd.Flags().BoolVar(&ra.NoValidate, "no-validate", false,
		"Skip JSON schema validation of registry documents")

	err := cmd.MarkFlagDirname("registry")
	if err != nil {
		panic(fmt.Errorf("mark registry flag: %w", err))
	}

	err = cmd.MarkFlagRequired("registry")
	if err != nil {
		panic(fmt.Errorf("mark registry flag required: %w", err))
	}
}

// ScopeChain returns the requested scope chain, defaulting to the
// global scope.
func (ra *RegistryArgs) ScopeChain() []string {
	if len(ra.Scopes) == 0 {
		return []string{registry.GlobalScope}
	}

	return ra.Scopes
}

// mergedView is the read-only result of the load -> validate -> merge
// stages, shared by apply, doctor, and export.
type mergedView struct {
	Registry *registry.Registry
	Charter  *charters.Charter
	Ego      *egos.EgoConfig
	Rules    []registry.MergedRule
	Scopes   []string
}

// loadMergedView runs the pipeline up to the merge stage. Every
// failure aborts before any file is written.
func loadMergedView(ra *RegistryArgs) (*mergedView, error) {
	reg, err := registry.New(ra.Registry)
	if err != nil {
		return nil, err //nolint:wrapcheck // Surface the registry error verbatim.
	}

	validate := !ra.NoValidate

	charter, err := reg.LoadCharter(validate)
	if err != nil {
		return nil, err //nolint:wrapcheck // Surface the registry error verbatim.
	}

	scopes := ra.ScopeChain()

	rules, err := reg.MergeScopeRules(charter, scopes)
	if err != nil {
		return nil, err //nolint:wrapcheck // Surface the scope error verbatim.
	}

	ego, err := reg.MergeEgoConfigs(scopes, validate)
	if err != nil {
		return nil, err //nolint:wrapcheck // Surface the registry error verbatim.
	}

	return &mergedView{
		Registry: reg,
		Charter:  charter,
		Rules:    rules,
		Ego:      ego,
		Scopes:   scopes,
	}, nil
}

// buildTime returns the timestamp stamped into compiled artifacts.
// SOURCE_DATE_EPOCH, when set, pins it for reproducible output.
func buildTime() time.Time {
	if v := os.Getenv("SOURCE_DATE_EPOCH"); v != "" {
		sec, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return time.Unix(sec, 0).UTC()
		}
	}

	return time.Now()
}
