package cli

import (
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/egokit/egokit/pkg/log"
)

// claudeBinary is the external agent binary invoked by claude-headless.
const claudeBinary = "claude"

type HeadlessArgs struct {
	*RootArgs
	RegistryArgs
}

func NewHeadlessCmd(rootArgs *RootArgs) *cobra.Command {
	ra := &HeadlessArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "claude-headless <prompt>",
		Short: "Run the external claude binary with the exported system prompt appended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadless(cmd, ra, args[0])
		},
	}
	ra.RegistryArgs.AddFlags(cmd)

	return cmd
}

// runHeadless is a thin integration shim: it exports the system-prompt
// fragment and shells out to the agent binary, inheriting stdio.
func runHeadless(cmd *cobra.Command, ra *HeadlessArgs, prompt string) error {
	fragment, err := exportSystemPrompt(&ra.RegistryArgs)
	if err != nil {
		return err
	}

	//nolint:gosec // G204: the binary name is a constant.
	proc := exec.CommandContext(cmd.Context(), claudeBinary,
		"--append-system-prompt", fragment,
		"-p", prompt,
	)
	proc.Stdin = cmd.InOrStdin()
	proc.Stdout = cmd.OutOrStdout()
	proc.Stderr = cmd.ErrOrStderr()

	log.WithContext(cmd.Context()).Debug("invoking external agent",
		slog.String("binary", claudeBinary),
		slog.Int("system_prompt_bytes", len(fragment)),
	)

	err = proc.Run()
	if err != nil {
		return fmt.Errorf("run %s: %w", claudeBinary, err)
	}

	return nil
}
