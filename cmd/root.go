/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
)

// RootCmd is the base command for metis. Invoked bare it drops into the
// interactive service menu.
var RootCmd = &cobra.Command{
	Use:   "metis",
	Short: "Manage the analytical ecosystem docker compose stack",
	Long: `Metis manages a docker compose stack of analytics services: databases,
dashboards, notebooks, caches and their supporting pieces. Services are
discovered from services/<id>/service.yaml descriptors under the stack root.

Run without a subcommand for the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && os.Getenv("LOG_LEVEL") == "" {
			os.Setenv("LOG_LEVEL", "debug")
			logger.InitializeWithFallback()
		}
	},
	RunE: metis_cli.Wrap(runMenu),
}

// RegisterCommands adds global flags and all subcommands to the root command.
func RegisterCommands() {
	RootCmd.PersistentFlags().StringP("profiles", "p", "",
		"Comma-separated service ids to operate on (default: all discovered)")
	RootCmd.PersistentFlags().String("stack-dir", "",
		"Stack root directory (default: search upward for docker-compose.yml, or METIS_STACK_DIR)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Verbose output")

	for _, subCmd := range []*cobra.Command{
		ListCmd,
		StartCmd,
		StopCmd,
		RestartCmd,
		StatusCmd,
		LogsCmd,
		BuildCmd,
		CleanCmd,
		NukeCmd,
		ShellCmd,
		TestCmd,
		EnvCmd,
		SeedCmd,
		SecretCmd,
		BootstrapCmd,
		MenuCmd,
		WatchCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute initializes and runs the root command. Expected user errors
// (declined confirmations) exit 0; everything else exits per its
// classification.
func Execute(ctx context.Context) {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Failed to flush logs: %v\n", err)
		}
	}()

	RegisterCommands()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		metis_err.PrintError("command failed", err)
		os.Exit(metis_err.GetExitCode(err))
	}
}
