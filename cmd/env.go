// cmd/env.go

package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/envfile"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// EnvCmd assembles an env file from the per-service fragments and shows the
// merged key set with secret-looking values masked.
var EnvCmd = &cobra.Command{
	Use:   "env",
	Short: "Generate a consolidated env file from service fragments",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		root, err := stackRoot(cmd)
		if err != nil {
			return err
		}

		output := cli.GetStringOrEmpty(cmd, "output")
		if !filepath.IsAbs(output) {
			output = filepath.Join(root, output)
		}

		_, fragments, err := envfile.Generate(rc, root, profileList(cmd), output)
		if err != nil {
			return err
		}

		printSuccess("Wrote %s", output)
		if len(fragments) == 0 {
			printWarn("No env fragments found.")
			return nil
		}

		printInfo("Included fragments:")
		for _, frag := range fragments {
			rel, relErr := filepath.Rel(root, frag)
			if relErr != nil {
				rel = frag
			}
			printPlain("  %s", filepath.ToSlash(rel))
		}

		merged, keys := envfile.Merged(fragments)
		printBlank()
		printInfo("Merged keys:")
		for _, key := range keys {
			printPlain("  %s=%s", key, envfile.MaskValue(key, merged[key]))
		}
		return nil
	}),
}

func init() {
	EnvCmd.Flags().StringP("output", "o", ".env.example", "Output path for the generated env file")
}
