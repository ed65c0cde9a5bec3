package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidMessage = "COMMAND_VALIDATION_FAILED"
	textCodeCanceled       = "COMMAND_CONTEXT_CANCELED"
	textCodeDeadline       = "COMMAND_CONTEXT_TIMEOUT"
	textCodeFailed         = "COMMAND_EXECUTION_FAILED"
)

// rejectMessage tags a Validate failure. Errors already categorised by the
// domain packages keep their own category and text code.
func rejectMessage(err error) error {
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(textCodeInvalidMessage)
}

// classify wraps an execution failure and reports which telemetry bucket it
// belongs to.
func classify(err error) (error, TelemetryStatus) {
	status := TelemetryStatusFailed
	message, code := "command execution failed", textCodeFailed
	switch {
	case errors.Is(err, context.Canceled):
		status = TelemetryStatusContextError
		message, code = "command execution cancelled", textCodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		status = TelemetryStatusContextError
		message, code = "command execution deadline exceeded", textCodeDeadline
	}
	if goerrors.IsWrapped(err) {
		return err, status
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, message).WithTextCode(code), status
}
