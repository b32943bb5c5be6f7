package tools

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/dodgeblaster/orange-agent/pkg/policy"
	"github.com/dodgeblaster/orange-agent/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

// RunCommand executes a shell command. Both its own predicate and its effect
// class mark it for confirmation; approving it is always a human decision.
type RunCommand struct {
	// Dir is the working directory for the command. Empty means the process CWD.
	Dir string

	// Timeout bounds command execution. Defaults to 30 seconds.
	Timeout time.Duration
}

type runCommandParams struct {
	Command string `mapstructure:"command"`
}

// CommandOutput is the structured result of a command run.
type CommandOutput struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

func (t RunCommand) Name() string { return "run_command" }

func (t RunCommand) Description() string {
	return "Executes a shell command and returns stdout, stderr and the exit code."
}

func (t RunCommand) ParameterSchema() *openapi3.Schema {
	return schema.Object(map[string]*openapi3.Schema{
		"command": schema.String("Shell command to execute."),
	}, "command")
}

func (t RunCommand) Validate(args map[string]any) error {
	if err := schema.Validate(t.ParameterSchema(), args); err != nil {
		return err
	}

	var params runCommandParams
	if err := decode(args, &params); err != nil {
		return err
	}
	if params.Command == "" {
		return fmt.Errorf("command must not be empty")
	}
	return nil
}

func (t RunCommand) RequiresConfirmation(args map[string]any) bool { return true }

func (t RunCommand) Effect() policy.Effect { return policy.EffectProcessExec }

func (t RunCommand) Execute(ctx context.Context, args map[string]any) (any, error) {
	var params runCommandParams
	if err := decode(args, &params); err != nil {
		return nil, err
	}

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", params.Command)
	cmd.Dir = t.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		out.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if _, isExit := err.(*exec.ExitError); isExit {
			// Non-zero exit is a result, not a transport failure. The model
			// sees the exit code and stderr and can react.
			return out, nil
		}
		return nil, fmt.Errorf("running command: %w", err)
	}
	return out, nil
}
