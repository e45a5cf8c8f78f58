package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/egokit/egokit/pkg/compile"
	"github.com/egokit/egokit/pkg/inject"
	"github.com/egokit/egokit/pkg/log"
)

type ApplyArgs struct {
	*RootArgs
	RegistryArgs

	Repo   string
	Agent  string
	DryRun bool
}

func NewApplyArgs(rootArgs *RootArgs) *ApplyArgs {
	return &ApplyArgs{
		RootArgs: rootArgs,
	}
}

func (ra *ApplyArgs) AddFlags(cmd *cobra.Command) {
	ra.RegistryArgs.AddFlags(cmd)

	cmd.Flags().StringVar(&ra.Repo, "repo", ".", "Target repository directory")
	cmd.Flags().StringVar(&ra.Agent, "agent", string(compile.AgentClaude),
		fmt.Sprintf("Agent variant to compile, one of: %v", compile.AllAgents))
	cmd.Flags().BoolVar(&ra.DryRun, "dry-run", false,
		"Render artifacts to stdout instead of writing files")

	err := cmd.MarkFlagDirname("repo")
	if err != nil {
		panic(fmt.Errorf("mark repo flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("agent", cobra.FixedCompletions(
		[]string{string(compile.AgentClaude), string(compile.AgentCursor), string(compile.AgentAugment)},
		cobra.ShellCompDirectiveNoFileComp,
	))
	if err != nil {
		panic(err)
	}
}

func NewApplyCmd(rootArgs *RootArgs) *cobra.Command {
	ra := NewApplyArgs(rootArgs)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Compile the merged policies and inject artifacts into a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	return cmd
}

func runApply(cmd *cobra.Command, ra *ApplyArgs) error {
	// Reject an unknown agent before loading anything.
	agent, err := compile.ParseAgent(ra.Agent)
	if err != nil {
		return err //nolint:wrapcheck // Usage error, surfaced verbatim.
	}

	view, err := loadMergedView(&ra.RegistryArgs)
	if err != nil {
		return err
	}

	ctx := compile.NewContext(ra.Repo, view.Rules, view.Ego, view.Scopes, buildTime())

	artifacts, err := agent.Compile(ctx)
	if err != nil {
		return fmt.Errorf("compile artifacts: %w", err)
	}

	log.WithContext(cmd.Context()).Debug("compiled artifacts",
		slog.String("agent", string(agent)),
		slog.Int("count", len(artifacts)),
	)

	var injector inject.Injector
	if ra.DryRun {
		injector = inject.NewDryRunInjector(cmd.OutOrStdout())
	} else {
		injector = inject.NewFileInjector(ra.Repo)
	}

	err = injector.Inject(artifacts)
	if err != nil {
		return fmt.Errorf("inject artifacts: %w", err)
	}

	if !ra.DryRun {
		d := compile.Derive(view.Rules)
		mustN(fmt.Fprintf(cmd.OutOrStdout(), "Applied %s for agent %q to %s\n",
			d.StandardsPhrase(), agent, ra.Repo))
	}

	return nil
}
