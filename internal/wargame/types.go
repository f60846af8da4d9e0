package wargame

import (
	"encoding/json"
	"strings"
)

// PersonnelCount is the response of the personnel aggregate lookup.
type PersonnelCount struct {
	Attackers int `json:"attackers"`
	Defenders int `json:"defenders"`
}

// BattleResult is the outcome of a simulated battle.
type BattleResult struct {
	PowerRatio          float64            `json:"powerRatio"`
	PowerAtk            float64            `json:"powerAtk"`
	PowerDef            float64            `json:"powerDef"`
	AtkPersCasualtyRate float64            `json:"atkPersCasualtyRate"`
	AtkTankCasualtyRate float64            `json:"atkTankCasualtyRate"`
	DefPersCasualtyRate float64            `json:"defPersCasualtyRate"`
	DefTankCasualtyRate float64            `json:"defTankCasualtyRate"`
	AdvanceRate         map[string]float64 `json:"advanceRate,omitempty"`
}

// FormationDetails is the detail view of a single formation.
type FormationDetails struct {
	UnitID    string  `json:"unit_id"`
	Name      string  `json:"name"`
	ShortName string  `json:"shortname,omitempty"`
	Faction   string  `json:"faction"`
	SIDC      string  `json:"sidc,omitempty"`
	Personnel int     `json:"personnel"`
	OLI       float64 `json:"oli"`
}

// Status is the acknowledgement returned by commit, save and export calls.
// The service answers either {"status": true} or {"status": "committed"}.
type Status struct {
	OK bool
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var flag bool
	if err := json.Unmarshal(raw.Status, &flag); err == nil {
		s.OK = flag
		return nil
	}
	var word string
	if err := json.Unmarshal(raw.Status, &word); err != nil {
		s.OK = false
		return nil
	}
	switch strings.ToLower(word) {
	case "committed", "success", "ok", "true", "saved", "exported":
		s.OK = true
	default:
		s.OK = false
	}
	return nil
}
