// cmd/menu.go

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/menu"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// MenuCmd launches the interactive service picker. A bare `metis` lands
// here too.
var MenuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive service menu",
	RunE:  metis_cli.Wrap(runMenu),
}

func runMenu(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	root, st, err := discoverStack(rc, cmd)
	if err != nil {
		return err
	}
	if len(st.Services) == 0 {
		printWarn("No services found under %s.", root)
		return nil
	}

	sel, err := menu.Run(st, runningHealth(rc, st))
	if err != nil {
		return err
	}

	switch sel.Action {
	case menu.ActionStart:
		return startServices(rc, root, st, sel.Services, true)
	case menu.ActionBuild:
		c := compose.New(root)
		if err := c.Preflight(rc); err != nil {
			return err
		}
		if err := c.Build(rc, sel.Services); err != nil {
			printError("Build failed.")
			return err
		}
		printSuccess("Build complete.")
		return nil
	default:
		return nil
	}
}
