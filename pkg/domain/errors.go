package domain

import (
	"errors"
	"fmt"
)

// ErrBatchInFlight is returned when a second commit or undo batch is
// requested while one is still outstanding. The engine never interleaves
// batches; callers queue or reject.
var ErrBatchInFlight = errors.New("another batch is already in flight")

// ErrSessionComplete is returned by CompleteStep on a terminal session.
var ErrSessionComplete = errors.New("review session is already complete")

// ErrStepInFlight is returned when a second CompleteStep arrives while the
// previous one is still persisting.
var ErrStepInFlight = errors.New("a step completion is already in flight")

// ProposalError reports that the model's output could not be turned into a
// validated action batch. Nothing is executed when this is returned.
type ProposalError struct {
	Reason string
	Raw    string // the raw model output, for diagnostics
}

func (e *ProposalError) Error() string {
	return fmt.Sprintf("malformed proposal: %s", e.Reason)
}

// ValidationError reports a structurally invalid action or one referencing
// an id the snapshot does not know. The offending action is dropped; its
// siblings proceed.
type ValidationError struct {
	Action Action
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action %s: %s", e.Action.Type, e.Reason)
}

// RemoteErrorKind classifies remote collaborator failures.
type RemoteErrorKind string

const (
	RemoteNotFound    RemoteErrorKind = "not_found"
	RemoteRateLimited RemoteErrorKind = "rate_limited"
	RemoteTransport   RemoteErrorKind = "transport"
)

// RemoteError is a failure from the remote task service. The core never
// retries these; retry policy, if any, belongs to the caller.
type RemoteError struct {
	Kind RemoteErrorKind
	Op   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s during %s: %v", e.Kind, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRemoteNotFound reports whether err is a RemoteError of kind not_found.
func IsRemoteNotFound(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == RemoteNotFound
}

// StaleTargetError reports that a commit target vanished or changed class
// between snapshot and commit.
type StaleTargetError struct {
	TargetID string
}

func (e *StaleTargetError) Error() string {
	return fmt.Sprintf("target %s no longer exists remotely", e.TargetID)
}

// InvalidStepInputError reports a CompleteStep input that does not satisfy
// the current step's schema. The session is left unchanged.
type InvalidStepInputError struct {
	StepID string
	Reason string
}

func (e *InvalidStepInputError) Error() string {
	return fmt.Sprintf("invalid input for step %s: %s", e.StepID, e.Reason)
}

// FetchError reports that a state fetch failed at the transport or auth
// layer.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch state: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
