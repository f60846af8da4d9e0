package roster

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Outcome is the result of resolving a drop.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeReverted  Outcome = "reverted"
)

// Engine moves units between containers and keeps the registry and the
// placement model in step.
type Engine struct {
	registry   *Registry
	placements *Placements
	notifier   Notifier
	events     EventWriter
	log        *slog.Logger
	now        func() time.Time
}

// NewEngine wires an engine over a registry and placement model. notifier and
// events may be nil.
func NewEngine(reg *Registry, pl *Placements, notifier Notifier, events EventWriter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry:   reg,
		placements: pl,
		notifier:   notifier,
		events:     events,
		log:        logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Registry exposes the engine's registry.
func (e *Engine) Registry() *Registry { return e.registry }

// Placements exposes the engine's placement model.
func (e *Engine) Placements() *Placements { return e.placements }

// Admit places a newly listed unit into its home container.
func (e *Engine) Admit(unitID, containerID string) error {
	if _, ok := e.registry.Role(containerID); !ok {
		return fmt.Errorf("admit %s: container %s: %w", unitID, containerID, ErrUnknownContainer)
	}
	if err := e.placements.RecordHome(unitID, containerID); err != nil {
		return err
	}
	return e.registry.Place(unitID, containerID)
}

// Commit moves a unit into target. A target that is unknown or not drop
// eligible turns the commit into a revert to the unit's current container.
func (e *Engine) Commit(unitID, target string) (Outcome, error) {
	src, err := e.placements.Current(unitID)
	if err != nil {
		return "", err
	}
	return e.commit(unitID, target, src, "")
}

// Revert returns a unit to source, the container it occupied when its drag
// began. The unit's home is not consulted.
func (e *Engine) Revert(unitID, source string) error {
	return e.revert(unitID, source, "")
}

// ResetAll returns every unit to its home container.
func (e *Engine) ResetAll() error {
	for _, id := range e.placements.Units() {
		home, err := e.placements.Home(id)
		if err != nil {
			return err
		}
		from, _ := e.placements.Current(id)
		if from == home {
			continue
		}
		if err := e.registry.Place(id, home); err != nil {
			return err
		}
		e.placements.move(id, home)
		e.emit(EventReset, id, from, home, "")
	}
	e.notify()
	return nil
}

func (e *Engine) commit(unitID, target, source, session string) (Outcome, error) {
	if !e.registry.DropEligible(target) {
		e.log.Info("drop target not eligible, reverting", "unit", unitID, "target", target, "source", source)
		if err := e.revert(unitID, source, session); err != nil {
			return "", err
		}
		return OutcomeReverted, nil
	}
	from, err := e.placements.Current(unitID)
	if err != nil {
		return "", err
	}
	if err := e.registry.Place(unitID, target); err != nil {
		return "", err
	}
	e.placements.move(unitID, target)
	e.emit(EventCommit, unitID, from, target, session)
	e.notify()
	return OutcomeCommitted, nil
}

func (e *Engine) revert(unitID, source, session string) error {
	from, err := e.placements.Current(unitID)
	if err != nil {
		return err
	}
	if err := e.registry.Place(unitID, source); err != nil {
		if errors.Is(err, ErrUnknownContainer) {
			e.log.Warn("revert target missing", "unit", unitID, "source", source)
		}
		return err
	}
	e.placements.move(unitID, source)
	e.emit(EventRevert, unitID, from, source, session)
	return nil
}

func (e *Engine) notify() {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(e.registry.UnitsWithRole(RoleAttacker), e.registry.UnitsWithRole(RoleDefender))
}

func (e *Engine) emit(kind EventKind, unitID, from, to, session string) {
	if e.events == nil {
		return
	}
	ev := Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		UnitID:    unitID,
		From:      from,
		To:        to,
		SessionID: session,
		Timestamp: e.now(),
	}
	if err := e.events.WriteEvent(ev); err != nil {
		e.log.Warn("journal write failed", "unit", unitID, "kind", kind, "err", err)
	}
}
