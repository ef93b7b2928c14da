package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/architect/pkg/domain"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var propErr *domain.ProposalError
	if errors.As(err, &propErr) {
		return NewCLIError(
			propErr.Error(),
			"Rephrase the request or try again; nothing was executed",
			err,
		)
	}

	var stepErr *domain.InvalidStepInputError
	if errors.As(err, &stepErr) {
		return NewCLIError(
			stepErr.Error(),
			"Check 'architect review status' for what this step expects",
			err,
		)
	}

	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		return NewCLIError(
			"could not fetch backend state",
			"Check TODOIST_API_TOKEN and your network connection",
			err,
		)
	}

	switch {
	case errors.Is(err, domain.ErrBatchInFlight):
		return NewCLIError("a batch is already being committed", "Wait for the current batch to finish, then retry", err)
	case errors.Is(err, domain.ErrSessionComplete):
		return NewCLIError("review session is already complete", "Run 'architect review start' for a new session", err)
	case errors.Is(err, domain.ErrStepInFlight):
		return NewCLIError("the current step is already being completed", "Wait a moment and check 'architect review status'", err)
	}

	return err
}
