package model

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid parameter detected before any external
// process is launched: a disallowed argument kind, a zero worker count, and so
// on. It is distinct from ExecError, which reports a tool that actually ran
// and failed.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// NewConfigurationError formats a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ExecError reports an external tool process that exited with a nonzero code.
// It carries the fully-expanded command line so the failure can be reproduced
// by hand. This layer never retries; retry policy belongs to the scheduler.
type ExecError struct {
	Cmd      []string
	ExitCode int
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("`%s` exited with code %d", strings.Join(e.Cmd, " "), e.ExitCode)
}

// LayoutError reports a required workspace path that is missing or of the
// wrong kind (a file where a directory was expected, or vice versa).
type LayoutError struct {
	Path string
	Msg  string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// DependencyError is the recorded reason of a task that was skipped because a
// predecessor failed. It is a terminal graph state, not a fault of the task
// itself, and always names the predecessor that caused the skip.
type DependencyError struct {
	Predecessor string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("skipped: dependency %q failed", e.Predecessor)
}
