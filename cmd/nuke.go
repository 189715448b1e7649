// cmd/nuke.go

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

// NukeCmd removes everything the stack ever created: containers, volumes,
// images, networks. Gated behind a typed confirmation.
var NukeCmd = &cobra.Command{
	Use:   "nuke",
	Short: "Remove everything: containers, volumes, images, networks",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		ids, err := resolveSelection(cmd, st)
		if err != nil {
			return err
		}

		printError("╔═══════════════════════════════════════════════════════════════╗")
		printError("║                    NUCLEAR CLEAN                              ║")
		printError("╚═══════════════════════════════════════════════════════════════╝")
		printBlank()
		printError("This will PERMANENTLY remove:")
		printPlain("  • All containers")
		printPlain("  • All volumes (databases, logs, data)")
		printPlain("  • All built images")
		printPlain("  • All networks")
		printBlank()
		printWarn("You will need to rebuild everything from scratch.")
		printBlank()

		if !interaction.PromptTypedConfirmation("This cannot be undone.", "nuke") {
			printWarn("Cancelled.")
			return metis_err.NewExpectedError(cerr.New("nuke cancelled"))
		}

		printBlank()
		printError("Nuking everything...")
		printBlank()
		if err := compose.New(root).Nuke(rc, ids); err != nil {
			printError("Nuclear clean failed.")
			return err
		}
		printSuccess("Nuclear clean complete. Everything has been removed.")
		return nil
	}),
}
