// pkg/metis_cli/wrap.go

package metis_cli

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap adapts a RuntimeContext handler onto cobra's RunE, adding panic
// recovery, lifecycle telemetry, and stack capture for unexpected errors.
func Wrap(fn func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if logger.L() == nil {
			logger.InitializeWithFallback()
		}

		rc := metis_io.NewContext(cmd.Context(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if cerr.Is(err, context.Canceled) {
			// Interrupt arrived through the signal context.
			return metis_err.NewUserCancelledError(cmd.Name())
		}
		if err != nil && !metis_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}

// WrapExtended is like Wrap but bounds the command with an overall deadline.
// Use it for commands that poll or wait on external services.
func WrapExtended(timeout time.Duration, fn func(rc *metis_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		if logger.L() == nil {
			logger.InitializeWithFallback()
		}

		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		rc := metis_io.NewContext(ctx, cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if cerr.Is(err, context.Canceled) {
			return metis_err.NewUserCancelledError(cmd.Name())
		}
		if err != nil && !metis_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
