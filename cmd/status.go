// cmd/status.go

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/container"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// StatusCmd shows the running stack containers as a table.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running services",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		mgr, err := container.NewManager()
		if err != nil {
			return err
		}
		defer func() { _ = mgr.Close() }()

		containers, err := mgr.Running(rc.Ctx, compose.ProjectName)
		if err != nil {
			return err
		}

		printInfo("Running ecosystem services:")
		printBlank()
		if len(containers) == 0 {
			printWarn("No services running.")
			return nil
		}

		fmt.Printf("%-40s %-25s %s\n", "NAME", "STATUS", "PORTS")
		fmt.Println(strings.Repeat("-", 80))
		for _, c := range containers {
			fmt.Printf("%-40s %-25s %s\n", c.Service(), c.StatusText, c.Ports)
		}
		return nil
	}),
}
