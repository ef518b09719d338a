package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitError      = 2
)

// ErrViolations is returned by commands whose batch verified but contained
// at least one invalid experiment. The report has already been printed.
var ErrViolations = errors.New("experiment configuration validation failed")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrViolations):
		return ExitViolations
	default:
		return ExitError
	}
}

type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported marks err as already shown to the user by a formatter. The exit
// code is unchanged.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// Silent reports whether err needs no further printing because the command
// already reported it.
func Silent(err error) bool {
	var reported *reportedError
	return errors.Is(err, ErrViolations) || errors.As(err, &reported)
}
