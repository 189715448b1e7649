// cmd/test.go

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/container"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/health"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// TestCmd runs both health check phases: container state, then connection
// probes from the service descriptors.
var TestCmd = &cobra.Command{
	Use:   "test [service-ids...]",
	Short: "Run health checks and connection tests",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		_, st, err := discoverStack(rc, cmd)
		if err != nil {
			return err
		}

		ids := args
		if len(ids) == 0 {
			ids = profileList(cmd)
		}
		if unknown := st.Unknown(ids); len(unknown) > 0 {
			return metis_err.NewValidationError(
				"unknown services: "+strings.Join(unknown, ", "),
				"Run `metis list` to see the available services.")
		}

		mgr, err := container.NewManager()
		if err != nil {
			return err
		}
		defer func() { _ = mgr.Close() }()

		printInfo("Running health checks...")
		printBlank()

		results, runErr := health.NewChecker(st, mgr).Run(rc, ids)
		if len(results) == 0 {
			printWarn("No services running.")
			return runErr
		}

		phase := health.KindContainer
		for _, res := range results {
			if phase == health.KindContainer && res.Kind != health.KindContainer {
				phase = res.Kind
				printBlank()
				printInfo("Running connection tests...")
				printBlank()
			}
			printResult(res)
		}

		printBlank()
		if runErr != nil {
			printWarn("Some tests failed or services not ready.")
			return runErr
		}
		printSuccess("All tests passed!")
		return nil
	}),
}

func printResult(res health.CheckResult) {
	line := "  " + res.Symbol() + " " + res.Service + " - " + res.Detail
	switch {
	case res.Warning:
		printWarn("%s", line)
	case res.Passed:
		printSuccess("%s", line)
	default:
		printError("%s", line)
	}
}
