// cmd/list.go

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// ListCmd prints every discovered service grouped by category.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available services",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		if len(st.Services) == 0 {
			printWarn("No services found under %s.", root)
			return nil
		}

		printPlain("Available services:")
		printBlank()
		for _, group := range st.ByCategory() {
			printBold("  %s:", group.Name)
			for _, svc := range group.Services {
				deps := ""
				if len(svc.DependsOn) > 0 {
					deps = " (requires: " + strings.Join(svc.DependsOn, ", ") + ")"
				}
				printPlain("    %s - %s%s", svc.ID, svc.Name, deps)
			}
			printBlank()
		}

		printServiceWarnings(st, nil)
		return nil
	}),
}
