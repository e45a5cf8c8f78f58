package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egokit/egokit/pkg/compile"
)

type ExportArgs struct {
	*RootArgs
	RegistryArgs

	Output string
}

func NewExportCmd(rootArgs *RootArgs) *cobra.Command {
	ra := &ExportArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "export-system-prompt",
		Short: "Render only the system-prompt fragment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, ra)
		},
	}
	ra.RegistryArgs.AddFlags(cmd)
	cmd.Flags().StringVarP(&ra.Output, "output", "o", "",
		"Write the fragment to a file instead of stdout")

	return cmd
}

func runExport(cmd *cobra.Command, ra *ExportArgs) error {
	fragment, err := exportSystemPrompt(&ra.RegistryArgs)
	if err != nil {
		return err
	}

	if ra.Output != "" {
		err = os.WriteFile(ra.Output, []byte(fragment), 0o600)
		if err != nil {
			return fmt.Errorf("write system prompt: %w", err)
		}

		return nil
	}

	mustN(fmt.Fprint(cmd.OutOrStdout(), fragment))

	return nil
}

// exportSystemPrompt runs the pipeline and renders the system-prompt
// fragment, shared by export-system-prompt and claude-headless.
func exportSystemPrompt(ra *RegistryArgs) (string, error) {
	view, err := loadMergedView(ra)
	if err != nil {
		return "", err
	}

	ctx := compile.NewContext("", view.Rules, view.Ego, view.Scopes, buildTime())
	d := compile.Derive(view.Rules)

	return compile.RenderSystemPrompt(ctx, d), nil
}
