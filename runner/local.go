package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// LocalProcessManager runs commands through the host shell. The extra
// environment entries are appended to the parent process environment, which
// is how the deployer signing key reaches the CLI.
type LocalProcessManager struct {
	logger *zap.Logger
	env    []string
}

// NewLocalProcessManager creates a local process manager with optional extra
// environment entries in KEY=VALUE form.
func NewLocalProcessManager(logger *zap.Logger, env ...string) *LocalProcessManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalProcessManager{logger: logger, env: env}
}

var _ ProcessManager = (*LocalProcessManager)(nil)

// Run starts the command under `sh -c`, blocks until it exits and returns
// its complete standard output. A failure to start or a non-zero exit is an
// error carrying the trailing stderr for diagnosis.
func (m *LocalProcessManager) Run(ctx context.Context, name, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = append(os.Environ(), m.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	m.logger.Debug("starting process",
		zap.String("name", name),
		zap.String("command", command))

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return stdout.String(), nil
}
