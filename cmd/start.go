// cmd/start.go

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/envfile"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

// StartCmd brings the selected services up. Unlike the other verbs it
// refuses an empty selection: starting the whole stack by accident is the
// expensive mistake.
var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start selected services",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		profiles := profileList(cmd)
		if len(profiles) == 0 {
			return metis_err.NewValidationError(
				"no services selected, nothing to start",
				"Pass --profiles postgres,jupyter or run `metis menu`.")
		}

		root, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}
		if unknown := st.Unknown(profiles); len(unknown) > 0 {
			return metis_err.NewValidationError(
				"unknown services: "+strings.Join(unknown, ", "),
				"Run `metis list` to see the available services.")
		}

		build, _ := cmd.Flags().GetBool("build")
		if err := startServices(rc, root, st, profiles, build); err != nil {
			return err
		}

		if runBootstrap, _ := cmd.Flags().GetBool("bootstrap"); runBootstrap {
			printBlank()
			return bootstrapDiscovered(rc, st, profiles)
		}
		return nil
	}),
}

func init() {
	StartCmd.Flags().Bool("build", true, "Build images before starting")
	StartCmd.Flags().Bool("bootstrap", false, "Run first-run setup against the stack's dashboard service after start")
}

// startServices is the shared start path used by `metis start` and the
// interactive menu: warnings, env bootstrap, compose up, access URLs.
func startServices(rc *metis_io.RuntimeContext, root string, st *stack.Stack, ids []string, build bool) error {
	printServiceWarnings(st, ids)
	printInfo("Starting services: %s", strings.Join(ids, ", "))
	printBlank()

	c := compose.New(root)
	if err := c.Preflight(rc); err != nil {
		return err
	}
	if err := envfile.EnsureEnv(rc, root); err != nil {
		return err
	}
	if err := c.Up(rc, ids, build); err != nil {
		printError("Failed to start services.")
		return err
	}

	printBlank()
	printSuccess("Services started!")
	printBlank()
	printAccessURLs(st, ids)
	return nil
}
