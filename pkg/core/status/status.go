// Package status declares error constants and operation outcomes returned by the sync engine.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/core and its consumers.
package status

import "github.com/oneconcern/datagit/pkg/errors"

var (
	// ErrConfiguration indicates a missing or invalid setting: unknown backend, unreadable spec or manifest,
	// invalid sampling directive. Such errors are detected before any remote activity.
	ErrConfiguration = errors.New("configuration error")

	// ErrLocalIO indicates that a local file or block store could not be read or written
	ErrLocalIO = errors.New("local I/O error")

	// ErrRemoteIO indicates that a remote transfer failed after all retries
	ErrRemoteIO = errors.New("remote I/O error")

	// ErrConsistency indicates a broken invariant: a manifest key missing from the block store,
	// or a tag that already exists
	ErrConsistency = errors.New("consistency error")

	// ErrPartialPush indicates that some objects could not be uploaded. They remain in the log for a retry.
	ErrPartialPush = errors.New("some objects could not be pushed")

	// ErrNothingToPush indicates that the log is empty
	ErrNothingToPush = errors.New("no objects to push at this time")

	// ErrNothingToCommit indicates that nothing was added since the last commit
	ErrNothingToCommit = errors.New("no files to commit")
)

// Code is the outcome of an operation, used as the process exit status
type Code int

// Outcomes of operations
const (
	OK          Code = 0
	Partial     Code = 1
	NothingToDo Code = 2
	ConfigError Code = 3
	Fatal       Code = 4
)

func (c Code) String() string {
	switch c {
	case OK:
		return "success"
	case Partial:
		return "partial failure"
	case NothingToDo:
		return "nothing to do"
	case ConfigError:
		return "configuration error"
	default:
		return "failure"
	}
}

// CodeOf maps an error returned by an operation to its outcome
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrNothingToPush), errors.Is(err, ErrNothingToCommit):
		return NothingToDo
	case errors.Is(err, ErrPartialPush):
		return Partial
	case errors.Is(err, ErrConfiguration):
		return ConfigError
	default:
		return Fatal
	}
}
