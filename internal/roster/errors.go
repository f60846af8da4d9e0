package roster

import "errors"

var (
	// ErrUnknownUnit is returned when an operation names a unit that was never placed.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrAlreadyPlaced is returned when a unit's home is recorded twice.
	ErrAlreadyPlaced = errors.New("unit already placed")
	// ErrSessionActive is returned when a drag begins while another is armed.
	ErrSessionActive = errors.New("drag session already active")
	// ErrDuplicateContainer is returned when a container is re-registered with another role.
	ErrDuplicateContainer = errors.New("container registered with a different role")
	// ErrUnknownContainer is returned when a unit is placed into an unregistered container.
	ErrUnknownContainer = errors.New("unknown container")
	// ErrNoSession is returned for hover or drop events outside an armed session.
	ErrNoSession = errors.New("no active drag session")
)
