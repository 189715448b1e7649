// pkg/execute/execute.go

// Package execute runs external commands with structured logging. Shell
// string evaluation is not supported; commands always run argv-style.
package execute

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/metis_err"
	"github.com/CodeMonkeyCybersecurity/metis/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Run executes a command with structured logging and proper error handling
func Run(ctx context.Context, opts Options) (string, error) {
	cmdStr := buildCommandString(opts.Command, opts.Args...)

	logger := opts.Logger
	if logger == nil {
		logger = DefaultLogger
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	if opts.DryRun || DefaultDryRun {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	var output string
	var err error

	for i := 1; i <= attempts; i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}
		if len(opts.Env) > 0 {
			cmd.Env = append(os.Environ(), opts.Env...)
		}

		var buf bytes.Buffer
		if opts.Capture {
			cmd.Stdout = &buf
			cmd.Stderr = &buf
		} else {
			cmd.Stdout = io.MultiWriter(os.Stdout, &buf)
			cmd.Stderr = io.MultiWriter(os.Stderr, &buf)
		}

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			logger.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		summary := metis_err.ExtractSummary(output, 2)
		span.RecordError(err)
		logger.Error("Execution failed", zap.Error(err),
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", summary),
		)

		if i < attempts {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		return output, cerr.Wrapf(err, "command failed after %d attempts", attempts)
	}

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunInteractive runs a command with the caller's terminal attached. Used for
// `metis shell` style commands where the child owns stdin.
func RunInteractive(ctx context.Context, dir string, name string, args ...string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
