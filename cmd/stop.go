// cmd/stop.go

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// StopCmd stops services; with no --profiles it stops everything.
var StopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop services",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		ids, err := resolveSelection(cmd, st)
		if err != nil {
			return err
		}

		printInfo("Stopping services...")
		if err := compose.New(root).Stop(rc, ids); err != nil {
			printError("Failed to stop services.")
			return err
		}
		printSuccess("Services stopped.")
		return nil
	}),
}
