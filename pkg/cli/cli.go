// pkg/cli/cli.go
//
// Shared flag and configuration helpers for the metis command tree. Flags are
// the primary interface; every flag can also be supplied through the
// environment (METIS_ prefix) once BindFlagsToViper has run for the command.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment namespace for all metis configuration.
const EnvPrefix = "METIS"

// AddStringFlag adds a string flag and optionally marks as required.
// Env/Config are handled by Viper if you call BindFlagsToViper.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string, required bool) {
	cmd.Flags().StringP(name, shorthand, def, help)
	if required {
		if err := cmd.MarkFlagRequired(name); err != nil {
			// Cobra still validates required flags at runtime.
			fmt.Fprintf(os.Stderr, "warning: failed to mark flag %s as required: %v\n", name, err)
		}
	}
}

// AddIntFlag adds an int flag.
func AddIntFlag(cmd *cobra.Command, name, shorthand string, def int, help string) {
	cmd.Flags().IntP(name, shorthand, def, help)
}

// BindFlagsToViper binds all flags on a command to a Viper instance.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// SetViperEnvPrefix lets Viper read env with the metis prefix.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// NewCommandViper returns a Viper bound to this command's flags with env
// override enabled. Flag value > METIS_* env > flag default.
func NewCommandViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	SetViperEnvPrefix(v, EnvPrefix)
	if err := BindFlagsToViper(cmd, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetStringOrEmpty returns the string value or empty string if error.
// For required flags, use Cobra's built-in validation instead.
func GetStringOrEmpty(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to get flag %s: %v\n", name, err)
		return ""
	}
	return val
}

// GetRequiredString returns the flag value, erroring when absent or empty.
func GetRequiredString(cmd *cobra.Command, name string) (string, error) {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("flag error for --%s: %w", name, err)
	}
	if val == "" {
		return "", fmt.Errorf("required flag --%s is empty", name)
	}
	return val, nil
}
