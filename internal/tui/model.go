// Package tui provides an interactive viewer for blame results.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcdonaldj/siblame/internal/ports"
)

// Model is the blame viewer model
type Model struct {
	svc      ports.BlameService
	ctx      context.Context
	dir      string
	filename string

	width    int
	height   int
	quitting bool

	loading bool
	result  *ports.BlameResult
	err     error
	cursor  int
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "b"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "f", " "),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "bottom"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// blameMsg carries the outcome of loading the blame.
type blameMsg struct {
	result *ports.BlameResult
	err    error
}

// NewModel creates a viewer for filename in dir. The blame is loaded by Init.
func NewModel(ctx context.Context, svc ports.BlameService, dir, filename string) *Model {
	return &Model{
		svc:      svc,
		ctx:      ctx,
		dir:      dir,
		filename: filename,
		loading:  true,
	}
}

// Init starts loading the blame
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		result, err := m.svc.Blame(m.ctx, m.dir, m.filename)
		return blameMsg{result: result, err: err}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampCursor()
		return m, nil

	case blameMsg:
		m.loading = false
		m.result = msg.result
		m.err = msg.err
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)
		case key.Matches(msg, keys.Down):
			m.moveCursor(1)
		case key.Matches(msg, keys.PageUp):
			m.moveCursor(-m.pageSize())
		case key.Matches(msg, keys.PageDown):
			m.moveCursor(m.pageSize())
		case key.Matches(msg, keys.Home):
			m.cursor = 0
		case key.Matches(msg, keys.End):
			m.cursor = len(m.lines()) - 1
			m.clampCursor()
		}
	}

	return m, nil
}

func (m *Model) lines() []ports.BlameLine {
	if m.result == nil {
		return nil
	}
	return m.result.Lines
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.lines()) {
		m.cursor = len(m.lines()) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// pageSize is the number of blame rows visible at once.
func (m *Model) pageSize() int {
	visibleHeight := m.height - 10
	if visibleHeight < 5 {
		visibleHeight = 5
	}
	return visibleHeight
}

// View renders the UI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf(" siblame %s ", m.filename)))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(dimStyle.Render("  Loading blame..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(errorBadge.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.result != nil && !m.result.Success:
		b.WriteString(errorBadge.Render("Blame failed: " + m.result.ErrorMessage))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.result.CommandLine))
		b.WriteString("\n")
	case len(m.lines()) == 0:
		b.WriteString(dimStyle.Render("  No lines"))
		b.WriteString("\n")
	default:
		m.renderLines(&b)
	}

	help := "[↑/↓] navigate  [pgup/pgdn] page  [g/G] top/bottom  [q] quit"
	b.WriteString(helpStyle.Render(help))

	return appStyle.Render(b.String())
}

func (m *Model) renderLines(b *strings.Builder) {
	lines := m.lines()

	header := fmt.Sprintf("  %6s %-12s %-20s %s", "LINE", "REVISION", "AUTHOR", "DATE")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", 70)))
	b.WriteString("\n")

	visibleHeight := m.pageSize()
	start := 0
	if m.cursor >= visibleHeight {
		start = m.cursor - visibleHeight + 1
	}

	for i := start; i < len(lines) && i < start+visibleHeight; i++ {
		l := lines[i]
		cursor := "  "
		style := normalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%6d ", cursor, l.LineNumber)))
		b.WriteString(revisionStyle.Render(fmt.Sprintf("%-12s", truncate(l.Revision, 12))))
		b.WriteString(" ")
		b.WriteString(authorStyle.Render(fmt.Sprintf("%-20s", truncate(l.Author, 20))))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render(dateLabel(l)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("line %d of %d", m.cursor+1, len(lines))))
	b.WriteString("\n")
}

// Run starts the viewer
func Run(ctx context.Context, svc ports.BlameService, dir, filename string) error {
	p := tea.NewProgram(NewModel(ctx, svc, dir, filename), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Helper functions
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

// dateLabel shows the parsed time relative to now when known, else the raw date.
func dateLabel(l ports.BlameLine) string {
	if l.Time.IsZero() {
		return l.Date
	}
	return relativeTime(l.Time)
}

func relativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
