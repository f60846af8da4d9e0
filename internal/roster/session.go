package roster

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// State is the drag controller state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateResolved:
		return "resolved"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is the single in-flight drag.
type Session struct {
	ID     string `json:"id"`
	UnitID string `json:"unit_id"`
	// Source is the unit's container when the drag began and the revert target.
	Source string `json:"source"`
	// Accepted is true while the pointer is inside at least one eligible container.
	Accepted bool `json:"accepted"`

	claimed bool
	hovered map[string]struct{}
}

// Resolution describes how a drop was resolved.
type Resolution struct {
	Session   Session `json:"session"`
	Outcome   Outcome `json:"outcome"`
	Container string  `json:"container"`
}

// Controller mediates one drag at a time: Idle -> Armed -> Resolved -> Idle.
type Controller struct {
	engine  *Engine
	state   State
	session *Session
	log     *slog.Logger
}

// NewController returns an idle controller driving engine.
func NewController(engine *Engine, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{engine: engine, log: logger}
}

// State returns the controller state.
func (c *Controller) State() State { return c.state }

// Session returns a copy of the armed session, if any.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	s := *c.session
	s.hovered = nil
	return s, true
}

// BeginDrag arms a session for unitID and snapshots its current container.
func (c *Controller) BeginDrag(unitID string) (Session, error) {
	if c.state != StateIdle {
		return Session{}, fmt.Errorf("begin drag %s (dragging %s): %w", unitID, c.session.UnitID, ErrSessionActive)
	}
	src, err := c.engine.placements.Current(unitID)
	if err != nil {
		return Session{}, err
	}
	c.session = &Session{
		ID:      uuid.New().String(),
		UnitID:  unitID,
		Source:  src,
		hovered: make(map[string]struct{}),
	}
	c.state = StateArmed
	c.log.Debug("drag armed", "session", c.session.ID, "unit", unitID, "source", src)
	s, _ := c.Session()
	return s, nil
}

// HoverEnter records the pointer entering a container. Entering a container
// that is not drop eligible, or one already entered, changes nothing.
func (c *Controller) HoverEnter(containerID string) error {
	if c.state != StateArmed {
		return fmt.Errorf("hover enter %s: %w", containerID, ErrNoSession)
	}
	if !c.engine.registry.DropEligible(containerID) {
		return nil
	}
	c.session.hovered[containerID] = struct{}{}
	c.session.Accepted = true
	c.session.claimed = true
	return nil
}

// HoverExit records the pointer leaving a container. Exits for containers
// never entered are ignored, so enter and exit may arrive in any order.
func (c *Controller) HoverExit(containerID string) error {
	if c.state != StateArmed {
		return fmt.Errorf("hover exit %s: %w", containerID, ErrNoSession)
	}
	delete(c.session.hovered, containerID)
	c.session.Accepted = len(c.session.hovered) > 0
	return nil
}

// ResolveDrop ends the session. A non-empty, drop-eligible target commits the
// unit there, provided some eligible container accepted the drag during the
// session. Anything else reverts the unit to the session source.
func (c *Controller) ResolveDrop(containerID string) (Resolution, error) {
	if c.state != StateArmed {
		return Resolution{}, fmt.Errorf("resolve drop %s: %w", containerID, ErrNoSession)
	}
	c.state = StateResolved
	s := c.session
	defer func() {
		c.session = nil
		c.state = StateIdle
	}()

	snapshot := *s
	snapshot.hovered = nil
	res := Resolution{Session: snapshot}

	if containerID != "" && s.claimed && c.engine.registry.DropEligible(containerID) {
		outcome, err := c.engine.commit(s.UnitID, containerID, s.Source, s.ID)
		if err == nil {
			res.Outcome = outcome
			res.Container, _ = c.engine.placements.Current(s.UnitID)
			return res, nil
		}
		c.log.Warn("commit failed, reverting", "session", s.ID, "unit", s.UnitID, "target", containerID, "err", err)
	} else if containerID != "" {
		c.log.Info("drop cancelled", "session", s.ID, "unit", s.UnitID, "target", containerID, "accepted", s.claimed)
	}

	if err := c.engine.revert(s.UnitID, s.Source, s.ID); err != nil {
		return res, err
	}
	res.Outcome = OutcomeReverted
	res.Container = s.Source
	return res, nil
}

// Cancel ends the session without a drop target.
func (c *Controller) Cancel() (Resolution, error) {
	return c.ResolveDrop("")
}
