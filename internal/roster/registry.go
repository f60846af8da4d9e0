package roster

import "fmt"

// Role classifies a container.
type Role string

const (
	RoleAttacker    Role = "attacker"
	RoleDefender    Role = "defender"
	RoleAirAttacker Role = "air-attacker"
	RoleAirDefender Role = "air-defender"
	// RolePanel is a faction tree panel: the unassigned pool a unit starts in.
	RolePanel Role = "panel"
)

// DropEligible reports whether units may be committed into containers of this role.
func (r Role) DropEligible() bool {
	switch r {
	case RoleAttacker, RoleDefender, RoleAirAttacker, RoleAirDefender:
		return true
	}
	return false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RolePanel || r.DropEligible()
}

type container struct {
	id    string
	role  Role
	units []string
}

// Registry is the source of truth for container membership. A unit id is a
// member of at most one container at any time.
type Registry struct {
	containers map[string]*container
	order      []string
	location   map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		containers: make(map[string]*container),
		location:   make(map[string]string),
	}
}

// Register adds a container. Registering the same id with the same role again
// is a no-op.
func (r *Registry) Register(id string, role Role) error {
	if !role.Valid() {
		return fmt.Errorf("container %s: invalid role %q", id, role)
	}
	if c, ok := r.containers[id]; ok {
		if c.role != role {
			return fmt.Errorf("container %s (%s, requested %s): %w", id, c.role, role, ErrDuplicateContainer)
		}
		return nil
	}
	r.containers[id] = &container{id: id, role: role}
	r.order = append(r.order, id)
	return nil
}

// Role returns the role of a registered container.
func (r *Registry) Role(id string) (Role, bool) {
	c, ok := r.containers[id]
	if !ok {
		return "", false
	}
	return c.role, true
}

// DropEligible reports whether id is registered and accepts committed units.
func (r *Registry) DropEligible(id string) bool {
	role, ok := r.Role(id)
	return ok && role.DropEligible()
}

// Place moves unitID into containerID, removing it from any other container
// first. Placing a unit into the container it already occupies is a no-op.
func (r *Registry) Place(unitID, containerID string) error {
	target, ok := r.containers[containerID]
	if !ok {
		return fmt.Errorf("container %s: %w", containerID, ErrUnknownContainer)
	}
	prev, placed := r.location[unitID]
	if placed && prev == containerID {
		return nil
	}
	if placed {
		r.containers[prev].remove(unitID)
	}
	target.units = append(target.units, unitID)
	r.location[unitID] = containerID
	return nil
}

// UnitsIn returns a copy of the unit ids held by a container, in placement
// order. Unknown containers yield nil.
func (r *Registry) UnitsIn(id string) []string {
	c, ok := r.containers[id]
	if !ok {
		return nil
	}
	out := make([]string, len(c.units))
	copy(out, c.units)
	return out
}

// Locate returns the container currently holding unitID.
func (r *Registry) Locate(unitID string) (string, bool) {
	id, ok := r.location[unitID]
	return id, ok
}

// Containers returns container ids in registration order.
func (r *Registry) Containers() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// WithRole returns the ids of all containers registered with role.
func (r *Registry) WithRole(role Role) []string {
	var out []string
	for _, id := range r.order {
		if r.containers[id].role == role {
			out = append(out, id)
		}
	}
	return out
}

// UnitsWithRole concatenates the membership of every container with role.
func (r *Registry) UnitsWithRole(role Role) []string {
	out := []string{}
	for _, id := range r.WithRole(role) {
		out = append(out, r.containers[id].units...)
	}
	return out
}

// Len returns the number of placed units.
func (r *Registry) Len() int {
	return len(r.location)
}

func (c *container) remove(unitID string) {
	for i, id := range c.units {
		if id == unitID {
			c.units = append(c.units[:i], c.units[i+1:]...)
			return
		}
	}
}
