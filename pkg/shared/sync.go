package shared

import (
	"io"

	"go.uber.org/zap"
)

// SafeSync flushes the global logger. Sync on a terminal stdout returns
// EINVAL on some platforms, which is harmless, so the error is dropped.
func SafeSync() {
	_ = zap.L().Sync()
}

// SafeClose closes c and logs the error instead of returning it, for use in defers.
func SafeClose(log *zap.Logger, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil && log != nil {
		log.Warn("Failed to close resource", zap.Error(err))
	}
}
