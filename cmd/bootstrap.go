// cmd/bootstrap.go

package cmd

import (
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/bootstrap"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

// bootstrapTimeout bounds the whole command: readiness polling at its
// defaults is 5 minutes, leave room for slow setup on top.
const bootstrapTimeout = 15 * time.Minute

// BootstrapCmd runs first-run setup against a freshly started service: poll
// until healthy, check whether setup already ran, and if not create the
// admin account with the service's one-time setup token.
var BootstrapCmd = &cobra.Command{
	Use:   "bootstrap [service-id]",
	Short: "Run first-run setup against a dashboard service",
	Long: `Bootstrap polls a service until it reports healthy, then completes its
first-run setup exactly once: if the service is already configured nothing
is sent and the command reports "skipped".

The target comes from the named service's descriptor URL, or --url when no
service id is given. Every flag can also be set through the environment as
METIS_<FLAG> (METIS_EMAIL, METIS_MAX_ATTEMPTS, ...).`,
	Args: cobra.MaximumNArgs(1),
	RunE: metis_cli.WrapExtended(bootstrapTimeout, func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		v, err := cli.NewCommandViper(cmd)
		if err != nil {
			return err
		}

		target := bootstrap.Target{
			BaseURL:        v.GetString("url"),
			HealthPath:     v.GetString("health-path"),
			PropertiesPath: v.GetString("properties-path"),
			SetupPath:      v.GetString("setup-path"),
		}

		if len(args) == 1 {
			_, st, err := discoverStack(rc, cmd)
			if err != nil {
				return err
			}
			svc, ok := st.Lookup(args[0])
			if !ok {
				return metis_err.NewValidationError(
					"unknown service: "+args[0],
					"Run `metis list` to see the available services.")
			}
			if svc.URL == "" {
				return metis_err.NewValidationError(
					"service "+args[0]+" has no url in its descriptor",
					"Add a url to services/"+args[0]+"/service.yaml or pass --url.")
			}
			target.BaseURL = svc.URL
		}
		if target.BaseURL == "" {
			return metis_err.NewValidationError(
				"no bootstrap target",
				"Name a service (`metis bootstrap metabase`) or pass --url.")
		}

		identity := bootstrap.Identity{
			Email:     v.GetString("email"),
			Password:  v.GetString("password"),
			FirstName: v.GetString("first-name"),
			LastName:  v.GetString("last-name"),
			SiteName:  v.GetString("site-name"),
		}

		orch, err := bootstrap.New(bootstrap.Config{
			Target:      target,
			MaxAttempts: v.GetInt("max-attempts"),
			Interval:    v.GetDuration("interval"),
		})
		if err != nil {
			return err
		}

		return reportBootstrap(orch.Bootstrap(rc, identity), target.BaseURL)
	}),
}

func init() {
	cli.AddStringFlag(BootstrapCmd, "url", "", "", "Target base URL (overrides service discovery)", false)
	cli.AddStringFlag(BootstrapCmd, "health-path", "", bootstrap.DefaultHealthPath, "Health endpoint path", false)
	cli.AddStringFlag(BootstrapCmd, "properties-path", "", bootstrap.DefaultPropertiesPath, "Session properties endpoint path", false)
	cli.AddStringFlag(BootstrapCmd, "setup-path", "", bootstrap.DefaultSetupPath, "Setup endpoint path", false)
	cli.AddStringFlag(BootstrapCmd, "email", "", bootstrap.DefaultEmail, "Admin account email", false)
	cli.AddStringFlag(BootstrapCmd, "password", "", bootstrap.DefaultPassword, "Admin account password", false)
	cli.AddStringFlag(BootstrapCmd, "first-name", "", bootstrap.DefaultFirstName, "Admin first name", false)
	cli.AddStringFlag(BootstrapCmd, "last-name", "", bootstrap.DefaultLastName, "Admin last name", false)
	cli.AddStringFlag(BootstrapCmd, "site-name", "", bootstrap.DefaultSiteName, "Site name recorded during setup", false)
	cli.AddIntFlag(BootstrapCmd, "max-attempts", "", bootstrap.DefaultMaxAttempts, "Health poll attempts before giving up")
	BootstrapCmd.Flags().Duration("interval", bootstrap.DefaultInterval, "Delay between health poll attempts")
}

// reportBootstrap renders a Result and maps it to the process outcome:
// skipped and succeeded both exit zero.
func reportBootstrap(res bootstrap.Result, baseURL string) error {
	switch res.Outcome {
	case bootstrap.OutcomeSkipped:
		printWarn("Bootstrap skipped: %s (%s)", res.Detail, baseURL)
		return nil
	case bootstrap.OutcomeSucceeded:
		printSuccess("Bootstrap succeeded: %s (%s)", res.Detail, baseURL)
		if len(res.ID) > 0 {
			printPlain("  created id: %s", string(res.ID))
		}
		return nil
	default:
		printError("Bootstrap failed (%s): %s", res.Failure, res.Detail)
		return cerr.Newf("bootstrap %s failed (%s): %s", baseURL, res.Failure, res.Detail)
	}
}

// bootstrapDiscovered backs `metis start --bootstrap`: it bootstraps the
// first selected dashboard service using the stock defaults.
func bootstrapDiscovered(rc *metis_io.RuntimeContext, st *stack.Stack, ids []string) error {
	var target *stack.Service
	for _, id := range ids {
		svc, ok := st.Lookup(id)
		if !ok {
			continue
		}
		if svc.Category == "visualization" && svc.URL != "" {
			target = svc
			break
		}
	}
	if target == nil {
		return metis_err.NewValidationError(
			"no dashboard service in the selection to bootstrap",
			"Include a visualization service with a url, or run `metis bootstrap --url ...`.")
	}

	printInfo("Bootstrapping %s...", target.Name)
	orch, err := bootstrap.New(bootstrap.Config{
		Target: bootstrap.Target{BaseURL: target.URL},
	})
	if err != nil {
		return err
	}
	return reportBootstrap(orch.Bootstrap(rc, bootstrap.Identity{}), target.URL)
}
