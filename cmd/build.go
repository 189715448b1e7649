// cmd/build.go

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// BuildCmd builds service images without starting anything.
var BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build service images",
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
			printInfo("Building all service images...")
		} else {
			printInfo("Building images for: %s", strings.Join(ids, ", "))
		}

		c := compose.New(root)
		if err := c.Preflight(rc); err != nil {
			return err
		}
		if err := c.Build(rc, ids); err != nil {
			printError("Build failed.")
			return err
		}
		printSuccess("Build complete.")
		return nil
	}),
}
