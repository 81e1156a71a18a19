package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ProcessManager starts a named external process and waits for it to
// complete, returning everything it wrote to standard output.
type ProcessManager interface {
	Run(ctx context.Context, name string, command string) (string, error)
}

// Command is one named shell invocation within a batch.
type Command struct {
	Name    string
	Command string
}

// Output maps command names to their captured standard output.
type Output map[string]string

// CommandError reports the command that caused a batch to abort.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes command batches against an injected ProcessManager.
type Runner struct {
	manager ProcessManager
	logger  *zap.Logger
}

// New creates a Runner. A nil logger disables logging.
func New(manager ProcessManager, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{manager: manager, logger: logger}
}

// RunBatch executes the commands strictly in order, one at a time. The batch
// is all-or-nothing: the first failure aborts it, discards outputs already
// captured and returns a *CommandError naming the offending command. On full
// success every command's output is present in the returned map.
//
// Callers must use unique names within a batch; on a duplicate the later
// output overwrites the earlier one.
func (r *Runner) RunBatch(ctx context.Context, commands []Command) (Output, error) {
	outputs := make(Output, len(commands))
	for _, cmd := range commands {
		if _, ok := outputs[cmd.Name]; ok {
			r.logger.Warn("duplicate command name in batch", zap.String("name", cmd.Name))
		}
		r.logger.Info("executing command", zap.String("name", cmd.Name))
		stdout, err := r.manager.Run(ctx, cmd.Name, cmd.Command)
		if err != nil {
			r.logger.Error("command failed",
				zap.String("name", cmd.Name),
				zap.Error(err))
			return nil, &CommandError{Name: cmd.Name, Err: err}
		}
		outputs[cmd.Name] = stdout
	}
	return outputs, nil
}
