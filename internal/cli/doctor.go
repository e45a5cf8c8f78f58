package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/egokit/egokit/pkg/compile"
)

var (
	doctorKeyStyle   = lipgloss.NewStyle().Bold(true).Width(18)
	doctorFaintStyle = lipgloss.NewStyle().Faint(true)
)

type DoctorArgs struct {
	*RootArgs
	RegistryArgs
}

func NewDoctorCmd(rootArgs *RootArgs) *cobra.Command {
	ra := &DoctorArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Inspect the merged policy view without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, ra)
		},
	}
	ra.RegistryArgs.AddFlags(cmd)

	return cmd
}

// runDoctor prints the same merge the compiler would use: rule counts,
// the active scope chain, discovered scopes, and a persona summary.
func runDoctor(cmd *cobra.Command, ra *DoctorArgs) error {
	view, err := loadMergedView(&ra.RegistryArgs)
	if err != nil {
		return err
	}

	d := compile.Derive(view.Rules)

	discovered, err := view.Registry.DiscoverEgoScopes()
	if err != nil {
		return err //nolint:wrapcheck // Surface the registry error verbatim.
	}

	out := cmd.OutOrStdout()

	row := func(key, value string) {
		mustN(fmt.Fprintln(out, doctorKeyStyle.Render(key)+value))
	}

	row("Registry", view.Registry.Path())
	row("Scope chain", strings.Join(view.Scopes, " -> "))
	row("Standards", fmt.Sprintf("%s (%d critical, %d warning/info)",
		d.StandardsPhrase(), len(d.Critical), len(d.Advisory)))

	var scopeList []string
	for _, scope := range discovered {
		if slices.Contains(view.Scopes, scope) {
			scopeList = append(scopeList, scope)
		} else {
			scopeList = append(scopeList, doctorFaintStyle.Render(scope+" (inactive)"))
		}
	}
	row("Ego scopes", strings.Join(scopeList, ", "))

	persona := view.Ego.Role
	if view.Ego.Tone != nil && view.Ego.Tone.Voice != "" {
		persona += "; voice: " + view.Ego.Tone.Voice
	}
	row("Persona", persona)
	row("Checklist", fmt.Sprintf("%d reviewer items, %d ask-when-unsure items",
		len(view.Ego.ReviewerChecklist), len(view.Ego.AskWhenUnsure)))

	if d.SecurityFirst {
		row("Security", "security-first posture active")
	}

	return nil
}
