package scenario

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"qjm-roster/internal/roster"
)

// Obstacle describes a terrain obstacle in the battle area.
type Obstacle struct {
	Kind   string  `yaml:"kind" json:"kind" validate:"required"`
	Extent float64 `yaml:"extent" json:"extent" validate:"gte=0"`
}

// Parameters are the scalar battle inputs entered alongside the roster. They
// are passed to the wargame service as-is.
type Parameters struct {
	Terrain         string     `yaml:"terrain" json:"terrain" validate:"required"`
	Season          string     `yaml:"season" json:"season" validate:"required,oneof=winter spring summer fall"`
	Weather         string     `yaml:"weather" json:"weather" validate:"required"`
	Posture         string     `yaml:"posture" json:"posture" validate:"required"`
	DefFrontage     float64    `yaml:"def_frontage" json:"defFrontage" validate:"gt=0"`
	AirSuperiority  string     `yaml:"air_superiority" json:"airsuperiority"`
	AtkSurprise     string     `yaml:"atk_surprise" json:"atksurprise"`
	AtkSurpriseDays int        `yaml:"atk_surprise_days" json:"atksurprisedays" validate:"gte=0"`
	AtkCEV          float64    `yaml:"atk_cev" json:"atkcev" validate:"gt=0"`
	DefCEV          float64    `yaml:"def_cev" json:"defcev" validate:"gt=0"`
	BattleDate      string     `yaml:"battle_date" json:"battleDate" validate:"required,datetime=2006-01-02"`
	BattleTime      string     `yaml:"battle_time,omitempty" json:"battleTime,omitempty" validate:"omitempty,datetime=15:04"`
	DurationHours   float64    `yaml:"duration_hours,omitempty" json:"duration,omitempty" validate:"gte=0"`
	Obstacles       []Obstacle `yaml:"obstacles,omitempty" json:"obstacles,omitempty" validate:"dive"`
}

// Payload is the full roster snapshot submitted for simulation or commit.
type Payload struct {
	roster.Lineup
	Parameters
}

// Defaults returns parameters usable without operator input.
func Defaults() Parameters {
	return Parameters{
		Terrain:        "rolling-mixed",
		Season:         "summer",
		Weather:        "dry-sunshine-temperate",
		Posture:        "hasty-defense",
		DefFrontage:    10,
		AirSuperiority: "none",
		AtkSurprise:    "none",
		AtkCEV:         1,
		DefCEV:         1,
		BattleDate:     "1985-08-01",
	}
}

// Load reads battle parameters from a YAML file, filling unset fields from Defaults.
func Load(path string) (*Parameters, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameters: %w", err)
	}
	p := Defaults()
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

var validate = validator.New()

// Validate checks parameter constraints and reports every failing field.
func Validate(p *Parameters) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("invalid battle parameters:\n  %s", strings.Join(msgs, "\n  "))
}

// Build combines a roster lineup with battle parameters.
func Build(l roster.Lineup, p Parameters) *Payload {
	return &Payload{Lineup: l, Parameters: p}
}

// Store holds the current battle parameters for concurrent readers.
type Store struct {
	mu sync.RWMutex
	p  Parameters
}

// NewStore returns a store seeded with p.
func NewStore(p Parameters) *Store {
	p.Obstacles = slices.Clone(p.Obstacles)
	return &Store{p: p}
}

// Get returns a copy of the current parameters that shares no memory with
// the store.
func (s *Store) Get() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.p
	p.Obstacles = slices.Clone(p.Obstacles)
	return p
}

// Set validates and replaces the parameters. A rejected value leaves the
// store unchanged.
func (s *Store) Set(p Parameters) error {
	if err := Validate(&p); err != nil {
		return err
	}
	p.Obstacles = slices.Clone(p.Obstacles)
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
	return nil
}

// Frontage returns the defender frontage in kilometres.
func (s *Store) Frontage() float64 {
	return s.Get().DefFrontage
}
