package wargame

import (
	"errors"
	"fmt"
)

// ErrRemoteCollaborator matches every failure returned by the wargame service client.
var ErrRemoteCollaborator = errors.New("remote collaborator error")

// RemoteError describes a failed call to the wargame service.
type RemoteError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("wargame %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("wargame %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Is reports true for ErrRemoteCollaborator so callers can match any remote failure.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteCollaborator
}
