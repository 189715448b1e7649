// cmd/shell.go

package cmd

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/container"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// ShellCmd opens an interactive shell inside a service container. Without an
// argument it lists the running services and prompts for one.
var ShellCmd = &cobra.Command{
	Use:   "shell [service]",
	Short: "Open a shell in a service container",
	Args:  cobra.MaximumNArgs(1),
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		service := ""
		if len(args) > 0 {
			service = args[0]
		}

		if service == "" {
			mgr, err := container.NewManager()
			if err != nil {
				return err
			}
			defer func() { _ = mgr.Close() }()

			containers, err := mgr.Running(rc.Ctx, compose.ProjectName)
			if err != nil {
				return err
			}
			if len(containers) == 0 {
				printWarn("No services running.")
				return metis_err.NewExpectedError(cerr.New("no services running"))
			}

			printWarn("Available running services:")
			for _, c := range containers {
				printPlain("  %s", c.Service())
			}
			printBlank()

			service = interaction.PromptInput("Enter service name", "")
			if service == "" {
				printError("No service specified.")
				return metis_err.NewExpectedError(cerr.New("no service specified"))
			}
		}

		name := compose.ContainerName(service)
		printInfo("Opening shell in: %s", name)
		return compose.Shell(rc, name)
	}),
}
