package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// termPrefix marks log messages that are really user-facing terminal output.
const termPrefix = "terminal prompt:"

// terminalCore wraps a zapcore.Core and renders "terminal prompt" entries as
// plain text so CLI output stays readable while still flowing through zap.
type terminalCore struct {
	base zapcore.Core
}

func newTerminalCore(base zapcore.Core) zapcore.Core {
	return &terminalCore{base: base}
}

func (c *terminalCore) Enabled(level zapcore.Level) bool {
	return c.base.Enabled(level)
}

func (c *terminalCore) With(fields []zapcore.Field) zapcore.Core {
	return &terminalCore{base: c.base.With(fields)}
}

func (c *terminalCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if strings.HasPrefix(entry.Message, termPrefix) {
		return ce.AddCore(entry, c)
	}
	return c.base.Check(entry, ce)
}

func (c *terminalCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if !strings.HasPrefix(entry.Message, termPrefix) {
		return c.base.Write(entry, fields)
	}

	if text := strings.TrimSpace(strings.TrimPrefix(entry.Message, termPrefix)); text != "" {
		fmt.Println(text)
	}

	if len(fields) == 0 {
		return nil
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}

	if output, ok := enc.Fields["output"]; ok {
		fmt.Println(fmt.Sprint(output))
		delete(enc.Fields, "output")
	}

	keys := make([]string, 0, len(enc.Fields))
	for key := range enc.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("%s: %v\n", key, enc.Fields[key])
	}

	return nil
}

func (c *terminalCore) Sync() error {
	return c.base.Sync()
}
