package roster

import (
	"fmt"
	"log/slog"
	"sync"

	"qjm-roster/internal/catalog"
)

// RoleContainers names the four roster slots.
type RoleContainers struct {
	Attackers    string `yaml:"attackers" json:"attackers"`
	Defenders    string `yaml:"defenders" json:"defenders"`
	AirAttackers string `yaml:"air_attackers" json:"air_attackers"`
	AirDefenders string `yaml:"air_defenders" json:"air_defenders"`
}

// DefaultRoleContainers returns the standard slot ids.
func DefaultRoleContainers() RoleContainers {
	return RoleContainers{
		Attackers:    "attackers",
		Defenders:    "defenders",
		AirAttackers: "air-attackers",
		AirDefenders: "air-defenders",
	}
}

// Sortie pairs an air unit with its operator-entered sortie count.
type Sortie struct {
	ID      string `json:"id"`
	Sorties int    `json:"sorties"`
}

// Lineup is the roster membership submitted for simulation.
type Lineup struct {
	Attackers    []string `json:"attackers"`
	Defenders    []string `json:"defenders"`
	AirAttackers []Sortie `json:"air_attackers"`
	AirDefenders []Sortie `json:"air_defenders"`
}

// UnitView describes a unit inside a container snapshot.
type UnitView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	SIDC     string `json:"sidc"`
	Color    string `json:"color,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	Home     string `json:"home"`
	Air      bool   `json:"air"`
	Sorties  int    `json:"sorties,omitempty"`
}

// ContainerView is one container in a snapshot.
type ContainerView struct {
	ID           string     `json:"id"`
	Role         Role       `json:"role"`
	DropEligible bool       `json:"drop_eligible"`
	Units        []UnitView `json:"units"`
}

// Snapshot is the full board state for rendering.
type Snapshot struct {
	Containers []ContainerView `json:"containers"`
	State      string          `json:"state"`
	Session    *Session        `json:"session,omitempty"`
}

// Board serialises access to the engine and drag controller so concurrent
// HTTP handlers behave like a single interaction thread.
type Board struct {
	mu         sync.Mutex
	roles      RoleContainers
	engine     *Engine
	controller *Controller
	units      map[string]catalog.Entry
	sorties    map[string]int
	outbox     *outbox
	log        *slog.Logger
}

// NewBoard registers the role containers and returns an empty board. Journal
// events go to events from a background goroutine; call Close to drain them.
func NewBoard(roles RoleContainers, notifier Notifier, events EventWriter, logger *slog.Logger) (*Board, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry()
	for _, rc := range []struct {
		id   string
		role Role
	}{
		{roles.Attackers, RoleAttacker},
		{roles.Defenders, RoleDefender},
		{roles.AirAttackers, RoleAirAttacker},
		{roles.AirDefenders, RoleAirDefender},
	} {
		if err := reg.Register(rc.id, rc.role); err != nil {
			return nil, err
		}
	}
	var ob *outbox
	if events != nil {
		ob = newOutbox(events, logger)
		events = ob
	}
	eng := NewEngine(reg, NewPlacements(), notifier, events, logger)
	return &Board{
		roles:      roles,
		engine:     eng,
		controller: NewController(eng, logger),
		units:      make(map[string]catalog.Entry),
		sorties:    make(map[string]int),
		outbox:     ob,
		log:        logger,
	}, nil
}

// Flush waits until every journal event emitted so far has been written.
func (b *Board) Flush() {
	if b.outbox != nil {
		b.outbox.flush()
	}
}

// Close writes any queued journal events and stops the journal goroutine.
// Later events are written synchronously.
func (b *Board) Close() {
	if b.outbox != nil {
		b.outbox.close()
	}
}

// Load registers a faction panel per catalog faction and admits every unit
// into its panel. The whole catalog is checked first, so a rejected catalog
// leaves the board unchanged: a unit id already on the board or listed twice
// yields ErrAlreadyPlaced, a panel id taken by a role container yields
// ErrDuplicateContainer.
func (b *Board) Load(c *catalog.Catalog) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg := b.engine.registry
	panels := c.Panels()
	for _, p := range panels {
		if role, ok := reg.Role(p); ok && role != RolePanel {
			return fmt.Errorf("panel %s: %w", p, ErrDuplicateContainer)
		}
	}
	entries := c.Entries()
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("load unit %s: %w", e.ID, ErrAlreadyPlaced)
		}
		seen[e.ID] = struct{}{}
		if _, err := b.engine.placements.Current(e.ID); err == nil {
			return fmt.Errorf("load unit %s: %w", e.ID, ErrAlreadyPlaced)
		}
	}

	for _, p := range panels {
		if err := reg.Register(p, RolePanel); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := b.engine.Admit(e.ID, e.Panel); err != nil {
			return fmt.Errorf("load unit %s: %w", e.ID, err)
		}
		b.units[e.ID] = e
	}
	b.log.Info("catalog loaded", "units", len(b.units), "containers", len(reg.Containers()))
	return nil
}

// BeginDrag starts a drag of unitID.
func (b *Board) BeginDrag(unitID string) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.controller.BeginDrag(unitID)
}

// HoverEnter forwards a pointer-enter event.
func (b *Board) HoverEnter(containerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.controller.HoverEnter(containerID)
}

// HoverExit forwards a pointer-exit event.
func (b *Board) HoverExit(containerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.controller.HoverExit(containerID)
}

// ResolveDrop ends the active drag; an empty containerID cancels it.
func (b *Board) ResolveDrop(containerID string) (Resolution, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.controller.ResolveDrop(containerID)
}

// ResetAll returns every unit to its home panel.
func (b *Board) ResetAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.controller.State() != StateIdle {
		return ErrSessionActive
	}
	return b.engine.ResetAll()
}

// SetSorties records the sortie count entered for an air unit.
func (b *Board) SetSorties(unitID string, n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.units[unitID]
	if !ok {
		return fmt.Errorf("unit %s: %w", unitID, ErrUnknownUnit)
	}
	if !e.Air {
		return fmt.Errorf("unit %s is not an air unit", unitID)
	}
	if n < 0 {
		return fmt.Errorf("sorties for %s must not be negative", unitID)
	}
	b.sorties[unitID] = n
	return nil
}

// Current returns the container a unit occupies.
func (b *Board) Current(unitID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.placements.Current(unitID)
}

// Home returns the container a unit was first rendered into.
func (b *Board) Home(unitID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.engine.placements.Home(unitID)
}

// Lineup returns the roster membership for the four role slots.
func (b *Board) Lineup() Lineup {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg := b.engine.registry
	return Lineup{
		Attackers:    reg.UnitsWithRole(RoleAttacker),
		Defenders:    reg.UnitsWithRole(RoleDefender),
		AirAttackers: b.sortiesFor(reg.UnitsWithRole(RoleAirAttacker)),
		AirDefenders: b.sortiesFor(reg.UnitsWithRole(RoleAirDefender)),
	}
}

// Snapshot returns every container with its units.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	reg := b.engine.registry
	snap := Snapshot{State: b.controller.State().String()}
	if s, ok := b.controller.Session(); ok {
		snap.Session = &s
	}
	for _, id := range reg.Containers() {
		role, _ := reg.Role(id)
		cv := ContainerView{ID: id, Role: role, DropEligible: role.DropEligible(), Units: []UnitView{}}
		for _, uid := range reg.UnitsIn(id) {
			e := b.units[uid]
			home, _ := b.engine.placements.Home(uid)
			cv.Units = append(cv.Units, UnitView{
				ID:       uid,
				Name:     e.Name,
				SIDC:     e.Symbol(),
				Color:    e.Color,
				ParentID: e.ParentID,
				Home:     home,
				Air:      e.Air,
				Sorties:  b.sorties[uid],
			})
		}
		snap.Containers = append(snap.Containers, cv)
	}
	return snap
}

// Roles returns the configured slot ids.
func (b *Board) Roles() RoleContainers { return b.roles }

func (b *Board) sortiesFor(ids []string) []Sortie {
	out := make([]Sortie, 0, len(ids))
	for _, id := range ids {
		out = append(out, Sortie{ID: id, Sorties: b.sorties[id]})
	}
	return out
}
