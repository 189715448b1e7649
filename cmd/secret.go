// cmd/secret.go

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/crypto"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_cli"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
)

// SecretCmd groups the small credential helpers some services want when
// filling in their env fragments.
var SecretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Password hashing and generation helpers",
}

var secretHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the bcrypt hash of a password",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		password := cli.GetStringOrEmpty(cmd, "password")
		if password == "" {
			var err error
			if password, err = interaction.PromptPassword("Password"); err != nil {
				return err
			}
		}
		if password == "" {
			return metis_err.NewValidationError("empty password",
				"Pass --password or type one at the prompt.")
		}

		hash, err := crypto.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	}),
}

var secretGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a random password",
	RunE: metis_cli.Wrap(func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		length, _ := cmd.Flags().GetInt("length")
		password, err := crypto.GeneratePassword(length)
		if err != nil {
			return err
		}
		fmt.Println(password)
		return nil
	}),
}

func init() {
	secretHashCmd.Flags().String("password", "", "Password to hash (prompted when omitted)")
	secretGenerateCmd.Flags().Int("length", 24, "Password length")
	SecretCmd.AddCommand(secretHashCmd, secretGenerateCmd)
}
