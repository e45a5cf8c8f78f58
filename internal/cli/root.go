package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/egokit/egokit/pkg/log"
)

const (
	cmdName = "egokit"
	cmdDesc = `Compile organizational policy and persona configuration into AI coding-assistant artifacts.`

	cmdExamples = `  # Scaffold a policy registry:
  egokit init --path . --org acme

  # Apply the merged global policies to a repository:
  egokit apply --repo . --registry ./.egokit/policy-registry

  # Apply with a team scope layered over global, for the Cursor agent:
  egokit apply --repo . --registry ./.egokit/policy-registry --scope global --scope teams/backend --agent cursor

  # Preview artifacts without writing files:
  egokit apply --repo . --registry ./.egokit/policy-registry --dry-run

  # Inspect the merged policy view:
  egokit doctor --registry ./.egokit/policy-registry --scope global`
)

type RootArgs struct {
	LogLevel  string
	LogFormat string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))

	var err error

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging(args),
	}

	args.AddFlags(cmd)
	cmd.AddCommand(
		NewInitCmd(args),
		NewApplyCmd(args),
		NewDoctorCmd(args),
		NewExportCmd(args),
		NewHeadlessCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}
