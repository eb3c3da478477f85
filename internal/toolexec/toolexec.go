// Package toolexec executes external scientific tools as child processes with
// normalized arguments, merged environments and explicit failure semantics.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/me/ligflow/pkg/model"
)

// Tool wraps invocations of one external binary.
type Tool struct {
	binary string
	logger *slog.Logger
}

// New creates a Tool for the binary at path. When path is empty the fallback
// name is used and resolved through PATH at execution time.
func New(path, fallback string, logger *slog.Logger) *Tool {
	binary := fallback
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			binary = abs
		} else {
			binary = path
		}
	}
	return &Tool{
		binary: binary,
		logger: logger.With("component", "toolexec", "binary", filepath.Base(binary)),
	}
}

// Binary returns the configured executable path or name.
func (t *Tool) Binary() string {
	return t.binary
}

// Options adjusts a single invocation.
type Options struct {
	// Input is piped to the child's stdin. When nil, stdin is the null
	// device; batch jobs must never block on terminal input.
	Input []byte

	// Dir is the working directory. Empty means the current process dir.
	Dir string

	// Env entries are merged over the inherited environment, key by key.
	Env map[string]string

	// Stdout and Stderr receive the child's output. When nil, the declared
	// per-task destination from the context is used if present, otherwise
	// the process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the tool with the given arguments and blocks until it exits.
// Argument kinds are validated before the process is spawned. A nonzero exit
// code is returned as a model.ExecError carrying the full command line; that
// is the only tool-failure mode and it is never retried here.
func (t *Tool) Execute(ctx context.Context, args []any, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}

	cmdline, err := NormalizeArgs(append([]any{t.binary}, args...))
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, cmdline[0], cmdline[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = mergeEnv(os.Environ(), opts.Env)

	if opts.Input != nil {
		cmd.Stdin = bytes.NewReader(opts.Input)
	}

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = stdoutFrom(ctx)
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	dir := opts.Dir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	t.logger.Info("executing", "cmd", strings.Join(cmdline, " "), "dir", dir)

	runErr := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		return nil
	case errors.As(runErr, &exitErr):
		return &model.ExecError{Cmd: cmdline, ExitCode: exitErr.ExitCode()}
	default:
		return fmt.Errorf("run %s: %w", cmdline[0], runErr)
	}
}

// mergeEnv overlays overrides onto base ("KEY=VALUE" entries), key by key.
// Override keys are applied in sorted order so the result is deterministic.
func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key, _, _ := strings.Cut(entry, "=")
		if _, ok := overrides[key]; !ok {
			merged = append(merged, entry)
		}
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, k+"="+overrides[k])
	}
	return merged
}

type stdoutKey struct{}

// WithStdout returns a context carrying a default stdout destination for tool
// invocations. The job runner uses this to honor a task's declared stdout
// file without threading a writer through every step function.
func WithStdout(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

func stdoutFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(stdoutKey{}).(io.Writer); ok && w != nil {
		return w
	}
	return os.Stdout
}
