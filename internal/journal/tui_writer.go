package journal

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"qjm-roster/internal/aggregate"
	"qjm-roster/internal/roster"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// eventMsg carries a journal event.
type eventMsg struct{ roster.Event }

// statsMsg carries a personnel density update.
type statsMsg struct{ aggregate.Stats }

// snapshotMsg carries the board membership after an event.
type snapshotMsg struct{ roster.Snapshot }

const maxLogLines = 500

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	commitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	revertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TUIWriter renders roster membership and the event log in the terminal.
type TUIWriter struct {
	program    teaProgram
	snapshot   func() roster.Snapshot
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program. snapshot is called after every
// event to refresh the container table; it must not call back into the writer.
func NewTUIWriter(snapshot func() roster.Snapshot) *TUIWriter {
	w := &TUIWriter{snapshot: snapshot, done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteEvent implements roster.EventWriter.
func (w *TUIWriter) WriteEvent(e roster.Event) error {
	w.program.Send(eventMsg{e})
	return nil
}

// Refresh pushes the current board snapshot to the table.
func (w *TUIWriter) Refresh() {
	if w.snapshot != nil {
		w.program.Send(snapshotMsg{w.snapshot()})
	}
}

// WriteStats shows a new density statistic.
func (w *TUIWriter) WriteStats(s aggregate.Stats) {
	w.program.Send(statsMsg{s})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	table  table.Model
	vp     viewport.Model
	logs   []string
	stats  aggregate.Stats
	wrap   bool
	width  int
	height int
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Container", Width: 24},
		{Title: "Role", Width: 14},
		{Title: "Units", Width: 6},
	}
	return tuiModel{
		table: table.New(table.WithColumns(cols), table.WithHeight(8)),
		vp:    viewport.New(0, 0),
		wrap:  true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-m.table.Height()-4, 3)
		m.refreshLog()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshLog()
		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
	case eventMsg:
		m.logs = append(m.logs, formatEvent(msg.Event))
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshLog()
	case snapshotMsg:
		m.table.SetRows(snapshotRows(msg.Snapshot))
	case statsMsg:
		m.stats = msg.Stats
	}
	return m, nil
}

func (m tuiModel) View() string {
	header := headerStyle.Render("qjm-roster") + " " + dimStyle.Render(m.statsLine())
	return lipgloss.JoinVertical(lipgloss.Left, header, m.table.View(), m.vp.View(), dimStyle.Render("q quit · w wrap"))
}

func (m tuiModel) statsLine() string {
	if m.stats.Seq == 0 {
		return "personnel: pending"
	}
	return fmt.Sprintf("atk %d · def %d · density %.1f/m (#%d)", m.stats.Attackers, m.stats.Defenders, m.stats.Density, m.stats.Seq)
}

func (m *tuiModel) refreshLog() {
	content := strings.Join(m.logs, "\n")
	if m.wrap && m.vp.Width > 0 {
		content = wordwrap.String(content, m.vp.Width)
	}
	m.vp.SetContent(content)
	m.vp.GotoBottom()
}

func formatEvent(e roster.Event) string {
	style := commitStyle
	switch e.Kind {
	case roster.EventRevert:
		style = revertStyle
	case roster.EventReset:
		style = resetStyle
	}
	return fmt.Sprintf("%s %s unit=%s %s -> %s",
		dimStyle.Render(e.Timestamp.Format(time.TimeOnly)),
		style.Render(strings.ToUpper(string(e.Kind))),
		e.UnitID, e.From, e.To)
}

func snapshotRows(s roster.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(s.Containers))
	for _, c := range s.Containers {
		rows = append(rows, table.Row{c.ID, string(c.Role), fmt.Sprintf("%d", len(c.Units))})
	}
	return rows
}
