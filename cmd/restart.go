// cmd/restart.go

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// RestartCmd restarts services; with no --profiles it restarts everything
// that is running.
var RestartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart services",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		ids, err := resolveSelection(cmd, st)
		if err != nil {
			return err
		}

		if len(profileList(cmd)) == 0 {
			printInfo("Restarting all running services...")
		} else {
			printInfo("Restarting services: %s", strings.Join(ids, ", "))
		}
		if err := compose.New(root).Restart(rc, ids); err != nil {
			printError("Failed to restart services.")
			return err
		}
		printSuccess("Services restarted.")
		return nil
	}),
}
