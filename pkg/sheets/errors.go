package sheets

import (
	"errors"
	"fmt"
)

var (
	// ErrRemote marks transport or service failures talking to the
	// spreadsheet backend.
	ErrRemote = errors.New("remote sheet error")
	// ErrNoMatch marks a scenario that could not be located in any
	// scanned worksheet.
	ErrNoMatch = errors.New("no matching cell")
)

// RemoteError wraps a backend failure with the operation that caused it.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// ResolutionError reports that no cell for the named scenario was found.
type ResolutionError struct {
	Scenario string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not locate scenario %q or an update column in the sheet", e.Scenario)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrNoMatch
}
