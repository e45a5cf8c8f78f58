package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/egokit/egokit/api"
	"github.com/egokit/egokit/api/v1beta1/charters"
	"github.com/egokit/egokit/api/v1beta1/egos"
	"github.com/egokit/egokit/pkg/registry"
	"github.com/egokit/egokit/pkg/yaml"
)

type InitArgs struct {
	*RootArgs

	Path string
	Org  string
}

func NewInitCmd(rootArgs *RootArgs) *cobra.Command {
	ra := &InitArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a minimal policy registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, ra)
		},
	}

	cmd.Flags().StringVar(&ra.Path, "path", ".", "Directory to scaffold the registry under")
	cmd.Flags().StringVar(&ra.Org, "org", "", "Organization name recorded in the charter metadata")

	err := cmd.MarkFlagDirname("path")
	if err != nil {
		panic(fmt.Errorf("mark path flag: %w", err))
	}

	return cmd
}

func runInit(cmd *cobra.Command, ra *InitArgs) error {
	root := filepath.Join(ra.Path, ".egokit", "policy-registry")
	charterPath := filepath.Join(root, "charter.yaml")

	err := charters.WriteDefault(charterPath, false)
	if err != nil {
		return err //nolint:wrapcheck // Error already names the file.
	}

	if ra.Org != "" {
		err = stampOrganization(charterPath, ra.Org)
		if err != nil {
			return err
		}
	}

	err = egos.WriteDefault(filepath.Join(root, "ego", "global.yaml"), false)
	if err != nil {
		return err //nolint:wrapcheck // Error already names the file.
	}

	err = api.WriteDefaultFile(
		filepath.Join(root, "schemas", "charter.schema.json"), charters.SchemaJSON(), false, "schema")
	if err != nil {
		return fmt.Errorf("write charter schema: %w", err)
	}

	err = api.WriteDefaultFile(
		filepath.Join(root, "schemas", "ego.schema.json"), egos.SchemaJSON(), false, "schema")
	if err != nil {
		return fmt.Errorf("write ego schema: %w", err)
	}

	mustN(fmt.Fprintf(cmd.OutOrStdout(), "Initialized policy registry at %s\n", root))

	return nil
}

// stampOrganization merges the organization name into the charter's
// metadata section, preserving comments and structure. The full
// metadata subtree is supplied so the merge never relies on partial
// nested updates.
func stampOrganization(charterPath, org string) error {
	data, err := api.ReadFile(charterPath)
	if err != nil {
		return err //nolint:wrapcheck // Error already names the file.
	}

	charter, err := registry.NewLoaderFromBytes(data, charters.New, nil).Load()
	if err != nil {
		return err //nolint:wrapcheck // Error already names the file.
	}

	meta := charter.Metadata
	if meta == nil {
		meta = &charters.Metadata{}
	}
	meta.Organization = org

	update := struct {
		Metadata *charters.Metadata `json:"metadata"`
	}{
		Metadata: meta,
	}

	merged, err := yaml.MergeRootFromValue(data, update)
	if err != nil {
		return fmt.Errorf("merge organization into charter: %w", err)
	}

	err = os.WriteFile(charterPath, merged, 0o600)
	if err != nil {
		return fmt.Errorf("write charter: %w", err)
	}

	return nil
}
