// cmd/helpers.go
//
// Shared resolution helpers: the stack root, the discovered stack, and the
// service selection every verb operates on.

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/container"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

// stackRoot resolves the stack root: --stack-dir flag, then METIS_STACK_DIR,
// then an upward search from the working directory for docker-compose.yml.
func stackRoot(cmd *cobra.Command) (string, error) {
	if dir := cli.GetStringOrEmpty(cmd, "stack-dir"); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", cerr.Wrapf(err, "resolve --stack-dir %s", dir)
		}
		return abs, nil
	}
	if dir := os.Getenv("METIS_STACK_DIR"); dir != "" {
		return dir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", cerr.Wrap(err, "determine working directory")
	}
	return stack.FindRoot(wd)
}

// discoverStack resolves the root and loads every service descriptor.
func discoverStack(rc *metis_io.RuntimeContext, cmd *cobra.Command) (string, *stack.Stack, error) {
	root, err := stackRoot(cmd)
	if err != nil {
		return "", nil, err
	}
	st, err := stack.Discover(rc, root)
	if err != nil {
		return "", nil, err
	}
	return root, st, nil
}

// profileList parses the global --profiles flag.
func profileList(cmd *cobra.Command) []string {
	raw := cli.GetStringOrEmpty(cmd, "profiles")
	if raw == "" {
		return nil
	}
	var profiles []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// resolveSelection turns --profiles into concrete service ids, defaulting to
// every discovered service. Unknown ids are a validation error.
func resolveSelection(cmd *cobra.Command, st *stack.Stack) ([]string, error) {
	profiles := profileList(cmd)
	if len(profiles) == 0 {
		return st.IDs(), nil
	}
	if unknown := st.Unknown(profiles); len(unknown) > 0 {
		return nil, metis_err.NewValidationError(
			"unknown services: "+strings.Join(unknown, ", "),
			"Run `metis list` to see the available services.")
	}
	return profiles, nil
}

// runningHealth maps running service ids to their container health status
// for the menu header. Docker being unreachable just means nothing is shown
// as running.
func runningHealth(rc *metis_io.RuntimeContext, st *stack.Stack) map[string]string {
	mgr, err := container.NewManager()
	if err != nil {
		return nil
	}
	defer func() { _ = mgr.Close() }()

	containers, err := mgr.Running(rc.Ctx, compose.ProjectName)
	if err != nil {
		return nil
	}

	running := make(map[string]string, len(containers))
	for _, c := range containers {
		id := c.Service()
		if _, ok := st.Lookup(id); !ok {
			continue
		}
		running[id] = mgr.Health(rc.Ctx, c.ID)
	}
	return running
}

// printServiceWarnings surfaces descriptor warnings for the given selection
// (or the whole stack when ids is nil).
func printServiceWarnings(st *stack.Stack, ids []string) {
	warnings := st.Warnings(ids)
	for _, w := range warnings {
		printWarn("Warning: %s", w)
	}
	if len(warnings) > 0 {
		printBlank()
	}
}

// printAccessURLs lists the access URL and credentials of each selected
// service that exposes one.
func printAccessURLs(st *stack.Stack, ids []string) {
	printBold("Access URLs:")
	for _, id := range ids {
		svc, ok := st.Lookup(id)
		if !ok || svc.URL == "" {
			continue
		}
		creds := ""
		if svc.Credentials != "" {
			creds = " (" + svc.Credentials + ")"
		}
		printPlain("  %s: %s%s", svc.Name, svc.URL, creds)
	}
}
