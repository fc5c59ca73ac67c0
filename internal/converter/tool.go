package converter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"retroforge/internal/services"
)

// Tool abstracts the external conversion executable.
type Tool interface {
	// Create compresses a cue/bin image into a container file.
	Create(ctx context.Context, cuePath, destPath string) error
	// Extract unpacks a container back into a cue sheet plus track binaries
	// alongside the given cue path.
	Extract(ctx context.Context, containerPath, destCuePath string) error
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onOutput func(string)) error
}

// Option configures the command tool.
type Option func(*CommandTool)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(t *CommandTool) {
		if exec != nil {
			t.exec = exec
		}
	}
}

// CommandTool drives the conversion binary as a subprocess.
type CommandTool struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewCommandTool constructs the subprocess-backed tool. The binary must be a
// resolved executable path; PATH lookup and version checks belong to the
// dependency checker, not here.
func NewCommandTool(binary string, timeoutSeconds int, opts ...Option) (*CommandTool, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, services.Wrap(services.ErrConfiguration, "converter", "new_tool",
			"conversion tool binary required", nil)
	}
	tool := &CommandTool{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(tool)
	}
	return tool, nil
}

func (t *CommandTool) Create(ctx context.Context, cuePath, destPath string) error {
	return t.run(ctx, "createcd", cuePath, destPath)
}

func (t *CommandTool) Extract(ctx context.Context, containerPath, destCuePath string) error {
	return t.run(ctx, "extractcd", containerPath, destCuePath)
}

func (t *CommandTool) run(ctx context.Context, verb, input, output string) error {
	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	// Keep a short tail of tool output so failures carry context.
	var tail []string
	err := t.exec.Run(runCtx, t.binary, []string{verb, "-i", input, "-o", output}, func(line string) {
		tail = append(tail, line)
		if len(tail) > 5 {
			tail = tail[1:]
		}
	})
	if err != nil {
		detail := fmt.Sprintf("%s failed", verb)
		if len(tail) > 0 {
			detail = fmt.Sprintf("%s failed: %s", verb, strings.Join(tail, " | "))
		}
		return services.Wrap(services.ErrExternalTool, "converter", verb, detail, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		if onOutput != nil {
			onOutput(scanner.Text())
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if scanErr != nil && !errors.Is(scanErr, bufio.ErrTooLong) {
		return fmt.Errorf("read output: %w", scanErr)
	}
	return nil
}
