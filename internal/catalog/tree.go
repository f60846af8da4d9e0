package catalog

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	factionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TreeFormatter renders the catalog as an indented faction tree.
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a formatter; useColors enables terminal styling.
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// Format renders ground factions followed by air factions, each headed by
// the panel id its units start in.
func (f *TreeFormatter) Format(c *Catalog) string {
	var b strings.Builder
	for _, fa := range c.Ground {
		f.formatFaction(&b, fa, PanelID(fa.Name, false))
	}
	for _, fa := range c.Air {
		f.formatFaction(&b, fa, PanelID(fa.Name, true))
	}
	return b.String()
}

func (f *TreeFormatter) formatFaction(b *strings.Builder, fa Faction, panel string) {
	b.WriteString(f.style(factionStyle, fa.Name))
	if panel != fa.Name {
		b.WriteString(" " + f.style(idStyle, "["+panel+"]"))
	}
	b.WriteString("\n")
	f.formatChildren(b, fa, "")
}

func (f *TreeFormatter) formatChildren(b *strings.Builder, fa Faction, prefix string) {
	n := len(fa.Units) + len(fa.Children)
	i := 0
	for _, u := range fa.Units {
		i++
		f.formatUnit(b, u, prefix, i == n)
	}
	for _, sub := range fa.Children {
		i++
		last := i == n
		b.WriteString(prefix + branch(last) + f.style(factionStyle, sub.Name) + "\n")
		f.formatChildren(b, sub, prefix+indent(last))
	}
}

func (f *TreeFormatter) formatUnit(b *strings.Builder, u Unit, prefix string, last bool) {
	b.WriteString(prefix + branch(last) + u.Name + " " + f.style(idStyle, "("+u.ID+")") + "\n")
	for i, child := range u.Children {
		f.formatUnit(b, child, prefix+indent(last), i == len(u.Children)-1)
	}
}

func (f *TreeFormatter) style(s lipgloss.Style, text string) string {
	if !f.useColors {
		return text
	}
	return s.Render(text)
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(last bool) string {
	if last {
		return "    "
	}
	return "│   "
}
