package roster

import (
	"fmt"
	"sort"
)

// Placements records, per unit, the container it was first rendered into and
// the container it occupies now.
type Placements struct {
	home    map[string]string
	current map[string]string
}

// NewPlacements returns an empty placement model.
func NewPlacements() *Placements {
	return &Placements{
		home:    make(map[string]string),
		current: make(map[string]string),
	}
}

// RecordHome registers a unit entering the system. It may be called only once
// per unit; the home container never changes afterwards.
func (p *Placements) RecordHome(unitID, containerID string) error {
	if prev, ok := p.home[unitID]; ok {
		return fmt.Errorf("unit %s (home %s): %w", unitID, prev, ErrAlreadyPlaced)
	}
	p.home[unitID] = containerID
	p.current[unitID] = containerID
	return nil
}

// Current returns the container the unit occupies.
func (p *Placements) Current(unitID string) (string, error) {
	c, ok := p.current[unitID]
	if !ok {
		return "", fmt.Errorf("unit %s: %w", unitID, ErrUnknownUnit)
	}
	return c, nil
}

// Home returns the container the unit was first rendered into.
func (p *Placements) Home(unitID string) (string, error) {
	c, ok := p.home[unitID]
	if !ok {
		return "", fmt.Errorf("unit %s: %w", unitID, ErrUnknownUnit)
	}
	return c, nil
}

// Units returns all known unit ids, sorted.
func (p *Placements) Units() []string {
	out := make([]string, 0, len(p.home))
	for id := range p.home {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (p *Placements) move(unitID, containerID string) {
	p.current[unitID] = containerID
}
