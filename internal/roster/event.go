package roster

import "time"

// EventKind names what happened to a unit.
type EventKind string

const (
	EventCommit EventKind = "commit"
	EventRevert EventKind = "revert"
	EventReset  EventKind = "reset"
)

// Event is a journal row describing one unit movement.
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	UnitID    string    `json:"unit_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventWriter receives every unit movement performed by the engine.
type EventWriter interface {
	WriteEvent(Event) error
}

// Notifier is told the attacker and defender membership after each commit.
// Implementations must not block.
type Notifier interface {
	Notify(attackers, defenders []string)
}
