package journal

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"qjm-roster/internal/aggregate"
	"qjm-roster/internal/roster"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(m tea.Msg) { f.msgs = append(f.msgs, m) }

func TestTUIWriterSendsMessages(t *testing.T) {
	p := &fakeProgram{}
	snap := roster.Snapshot{Containers: []roster.ContainerView{{ID: "attackers", Role: roster.RoleAttacker}}}
	w := &TUIWriter{program: p, snapshot: func() roster.Snapshot { return snap }}

	ev := roster.Event{Kind: roster.EventCommit, UnitID: "U7", From: "faction-A", To: "attackers", Timestamp: time.Unix(0, 0)}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	w.Refresh()
	w.WriteStats(aggregate.Stats{Seq: 1, Defenders: 8000, Density: 0.8})

	if len(p.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(p.msgs))
	}
	if _, ok := p.msgs[0].(eventMsg); !ok {
		t.Fatalf("expected eventMsg, got %T", p.msgs[0])
	}
	if _, ok := p.msgs[1].(snapshotMsg); !ok {
		t.Fatalf("expected snapshotMsg, got %T", p.msgs[1])
	}
}

func TestTUIModelUpdate(t *testing.T) {
	var m tea.Model = newTUIModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = m.Update(eventMsg{roster.Event{Kind: roster.EventRevert, UnitID: "U7", From: "attackers", To: "attackers"}})
	m, _ = m.Update(snapshotMsg{roster.Snapshot{Containers: []roster.ContainerView{{ID: "defenders", Role: roster.RoleDefender, Units: []roster.UnitView{{ID: "U9"}}}}}})
	m, _ = m.Update(statsMsg{aggregate.Stats{Seq: 2, Attackers: 10, Defenders: 20, Density: 0.1}})

	tm := m.(tuiModel)
	if len(tm.logs) != 1 || !strings.Contains(tm.logs[0], "unit=U7") {
		t.Fatalf("unexpected logs: %v", tm.logs)
	}
	rows := tm.table.Rows()
	if len(rows) != 1 || rows[0][0] != "defenders" || rows[0][2] != "1" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if !strings.Contains(tm.View(), "density 0.1") {
		t.Fatalf("view missing stats line")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}
