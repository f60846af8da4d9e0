package roster

import (
	"errors"
	"testing"
)

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("attackers", RoleAttacker); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register("attackers", RoleAttacker); err != nil {
		t.Fatalf("re-register with same role: %v", err)
	}
	err := r.Register("attackers", RoleDefender)
	if !errors.Is(err, ErrDuplicateContainer) {
		t.Fatalf("expected ErrDuplicateContainer, got %v", err)
	}
	if len(r.Containers()) != 1 {
		t.Fatalf("expected one container, got %v", r.Containers())
	}
	if err := r.Register("x", Role("bogus")); err == nil {
		t.Fatalf("expected invalid role error")
	}
}

func TestRegistryPlaceMovesUnit(t *testing.T) {
	r := NewRegistry()
	r.Register("faction-A", RolePanel)
	r.Register("attackers", RoleAttacker)

	if err := r.Place("U7", "faction-A"); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := r.Place("U7", "attackers"); err != nil {
		t.Fatalf("place: %v", err)
	}
	if got := r.UnitsIn("faction-A"); len(got) != 0 {
		t.Fatalf("unit still in faction panel: %v", got)
	}
	if got := r.UnitsIn("attackers"); len(got) != 1 || got[0] != "U7" {
		t.Fatalf("unexpected attackers: %v", got)
	}
	if err := r.Place("U7", "attackers"); err != nil {
		t.Fatalf("no-op place: %v", err)
	}
	if got := r.UnitsIn("attackers"); len(got) != 1 {
		t.Fatalf("no-op place duplicated unit: %v", got)
	}
	if err := r.Place("U7", "ghost"); !errors.Is(err, ErrUnknownContainer) {
		t.Fatalf("expected ErrUnknownContainer, got %v", err)
	}
	if loc, _ := r.Locate("U7"); loc != "attackers" {
		t.Fatalf("failed place moved unit to %s", loc)
	}
}

func TestRegistryUnitsInReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("defenders", RoleDefender)
	r.Place("a", "defenders")
	got := r.UnitsIn("defenders")
	got[0] = "mutated"
	if r.UnitsIn("defenders")[0] != "a" {
		t.Fatalf("UnitsIn exposed internal slice")
	}
	if r.UnitsIn("nope") != nil {
		t.Fatalf("expected nil for unknown container")
	}
}

func TestRoleDropEligible(t *testing.T) {
	cases := []struct {
		role Role
		want bool
	}{
		{RoleAttacker, true},
		{RoleDefender, true},
		{RoleAirAttacker, true},
		{RoleAirDefender, true},
		{RolePanel, false},
		{Role(""), false},
	}
	for _, tc := range cases {
		if got := tc.role.DropEligible(); got != tc.want {
			t.Errorf("%q.DropEligible() = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestPlacementsRecordHomeOnce(t *testing.T) {
	p := NewPlacements()
	if err := p.RecordHome("U7", "faction-A"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := p.RecordHome("U7", "faction-B"); !errors.Is(err, ErrAlreadyPlaced) {
		t.Fatalf("expected ErrAlreadyPlaced, got %v", err)
	}
	if home, _ := p.Home("U7"); home != "faction-A" {
		t.Fatalf("home changed to %s", home)
	}
	if _, err := p.Current("missing"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	if _, err := p.Home("missing"); !errors.Is(err, ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
}
