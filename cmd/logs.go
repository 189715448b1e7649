// cmd/logs.go

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// LogsCmd tails compose logs, following by default.
var LogsCmd = &cobra.Command{
	Use:   "logs [service]",
	Short: "Show service logs",
	Args:  cobra.MaximumNArgs(1),
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		ids, err := resolveSelection(cmd, st)
		if err != nil {
			return err
		}

		service := ""
		if len(args) > 0 {
			service = args[0]
			if _, ok := st.Lookup(service); !ok {
				return metis_err.NewValidationError(
					"unknown service: "+service,
					"Run `metis list` to see the available services.")
			}
			printInfo("Showing logs for: %s", service)
		} else {
			printInfo("Showing logs for all services...")
		}

		noFollow, _ := cmd.Flags().GetBool("no-follow")
		return compose.New(root).Logs(rc, ids, service, !noFollow)
	}),
}

func init() {
	LogsCmd.Flags().Bool("no-follow", false, "Print logs and exit instead of following")
}
