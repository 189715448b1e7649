// cmd/clean.go

package cmd

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// CleanCmd stops the stack and removes its volumes after confirmation.
var CleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Stop services and remove volumes",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		ids, err := resolveSelection(cmd, st)
		if err != nil {
			return err
		}

		printError("WARNING: This will stop all services and remove all volumes!")
		printError("All data (databases, logs, etc.) will be permanently deleted.")
		printBlank()

		force, _ := cmd.Flags().GetBool("yes")
		if !force && !interaction.PromptTypedConfirmation("Are you sure?", "yes") {
			printWarn("Clean cancelled.")
			return metis_err.NewExpectedError(cerr.New("clean cancelled"))
		}

		printInfo("Stopping services and removing volumes...")
		if err := compose.New(root).Clean(rc, ids); err != nil {
			printError("Clean failed.")
			return err
		}
		printSuccess("Clean complete. All services stopped and volumes removed.")
		return nil
	}),
}

func init() {
	CleanCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}
