// Unit catalog types shared by the roster board and the wargame client
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSIDC is used for units listed without a symbol code.
const DefaultSIDC = "30031000000000000000"

// Unit is a single formation or aircraft entry as listed by the unit service.
type Unit struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	SIDC      string `json:"sidc,omitempty" yaml:"sidc,omitempty"`
	ShortName string `json:"shortname,omitempty" yaml:"shortname,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Children  []Unit `json:"children,omitempty" yaml:"children,omitempty"`
}

// Faction groups units under an organisational origin.
type Faction struct {
	Name     string    `json:"name" yaml:"name"`
	Units    []Unit    `json:"units,omitempty" yaml:"units,omitempty"`
	Children []Faction `json:"children,omitempty" yaml:"children,omitempty"`
}

// Catalog is the full listing: ground factions and air factions.
type Catalog struct {
	Ground []Faction `json:"ground" yaml:"ground"`
	Air    []Faction `json:"air" yaml:"air"`
}

// Entry is a flattened unit with the panel it starts in.
type Entry struct {
	Unit
	Faction  string
	ParentID string
	Panel    string
	Air      bool
}

// PanelID returns the container id of a faction panel. Air factions get the
// "-air" suffix so they never collide with a ground faction of the same name.
func PanelID(faction string, air bool) string {
	if air {
		return faction + "-air"
	}
	return faction
}

// Symbol returns the unit's symbol code or the default code.
func (u Unit) Symbol() string {
	if u.SIDC == "" {
		return DefaultSIDC
	}
	return u.SIDC
}

// Entries flattens the catalog in listing order. Units nested under other
// units or under sub-factions belong to the panel of their top-level faction.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, f := range c.Ground {
		out = walkFaction(out, f, PanelID(f.Name, false), false)
	}
	for _, f := range c.Air {
		out = walkFaction(out, f, PanelID(f.Name, true), true)
	}
	return out
}

// Panels returns the faction panel ids in listing order.
func (c *Catalog) Panels() []string {
	var out []string
	for _, f := range c.Ground {
		out = append(out, PanelID(f.Name, false))
	}
	for _, f := range c.Air {
		out = append(out, PanelID(f.Name, true))
	}
	return out
}

// Validate reports duplicate or empty unit ids.
func (c *Catalog) Validate() error {
	seen := make(map[string]string)
	for _, e := range c.Entries() {
		if e.ID == "" {
			return fmt.Errorf("unit %q in faction %q has no id", e.Name, e.Faction)
		}
		if prev, ok := seen[e.ID]; ok {
			return fmt.Errorf("duplicate unit id %s (factions %q and %q)", e.ID, prev, e.Faction)
		}
		seen[e.ID] = e.Faction
	}
	return nil
}

func walkFaction(out []Entry, f Faction, panel string, air bool) []Entry {
	for _, u := range f.Units {
		out = walkUnit(out, u, f.Name, "", panel, air)
	}
	for _, sub := range f.Children {
		out = walkFaction(out, sub, panel, air)
	}
	return out
}

func walkUnit(out []Entry, u Unit, faction, parent, panel string, air bool) []Entry {
	out = append(out, Entry{Unit: u, Faction: faction, ParentID: parent, Panel: panel, Air: air})
	for _, child := range u.Children {
		out = walkUnit(out, child, faction, u.ID, panel, air)
	}
	return out
}

// LoadFile reads a catalog from a YAML or JSON file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &c)
	default:
		err = yaml.Unmarshal(b, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
