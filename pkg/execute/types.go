// pkg/execute/types.go

package execute

import (
	"time"

	"go.uber.org/zap"
)

// Options describes one command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the inherited environment
	Capture bool     // return combined output instead of streaming it
	Timeout time.Duration
	Retries int
	Delay   time.Duration
	DryRun  bool
	Logger  *zap.Logger
}

// DefaultLogger is used when an Options value carries no logger.
var DefaultLogger *zap.Logger

// DefaultDryRun forces dry-run mode process-wide.
var DefaultDryRun bool
