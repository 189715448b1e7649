// cmd/watch.go

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/compose"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/watch"
)

// WatchCmd restarts services as their files change, for stack development.
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Restart services when their files change",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, err := stackRoot(cmd)
		if err != nil {
			return err
		}

		printInfo("Watching %s for changes. Ctrl-C to stop.", root)
		return watch.New(root, compose.New(root)).Watch(rc)
	}),
}
