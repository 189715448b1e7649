package container

import (
	"bytes"
	"context"
	"io"

	cerr "github.com/cockroachdb/errors"
	"github.com/docker/docker/api/types/container"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ExecConfig defines and validates the parameters for an exec.
type ExecConfig struct {
	ContainerName string   `validate:"required"`
	Cmd           []string `validate:"required,min=1,dive,required"`
	Tty           bool
}

// Exec runs a command inside a container and returns its combined output.
// A non-zero exit is reported as an error carrying the output.
func (m *Manager) Exec(ctx context.Context, cfg ExecConfig) (string, error) {
	logger := otelzap.Ctx(ctx)

	if err := validator.New().Struct(cfg); err != nil {
		return "", cerr.Wrap(err, "invalid ExecConfig")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	execResp, err := m.client.ContainerExecCreate(ctx, cfg.ContainerName, container.ExecOptions{
		Cmd:          cfg.Cmd,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          cfg.Tty,
	})
	if err != nil {
		return "", cerr.Wrap(err, "creating exec instance")
	}

	attachResp, err := m.client.ContainerExecAttach(ctx, execResp.ID, container.ExecAttachOptions{Tty: cfg.Tty})
	if err != nil {
		return "", cerr.Wrap(err, "attaching to exec")
	}
	defer attachResp.Close()

	if err := m.client.ContainerExecStart(ctx, execResp.ID, container.ExecStartOptions{Tty: cfg.Tty}); err != nil {
		return "", cerr.Wrap(err, "starting exec")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, attachResp.Reader); err != nil {
		return "", cerr.Wrap(err, "reading exec output")
	}

	inspect, err := m.client.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return "", cerr.Wrap(err, "inspecting exec result")
	}
	if inspect.ExitCode != 0 {
		return buf.String(), cerr.Errorf("command exited with code %d", inspect.ExitCode)
	}

	logger.Debug("Exec complete",
		zap.String("container", cfg.ContainerName),
		zap.Int("exit_code", inspect.ExitCode))
	return buf.String(), nil
}
