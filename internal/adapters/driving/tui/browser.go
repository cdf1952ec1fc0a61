// Package tui provides an interactive terminal browser for check findings.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	selectedStyle = lipgloss.NewStyle().Bold(true)
)

func kindStyle(kind domain.FindingKind) lipgloss.Style {
	switch kind {
	case domain.FindingPlagiarism:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4D"))
	case domain.FindingAI:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	}
}

// Item is one finding together with the document it was found in.
type Item struct {
	DocumentID string
	Raw        string
	Finding    domain.Finding
}

// Items flattens the findings of reports in report then sequence order.
func Items(reports []*domain.Report) []Item {
	var items []Item
	for _, r := range reports {
		if r == nil {
			continue
		}
		for _, f := range r.Findings {
			items = append(items, Item{DocumentID: r.Document.ID, Raw: r.Document.Content, Finding: f})
		}
	}
	return items
}

// Model lists findings and shows the selected one in a detail pane.
type Model struct {
	keys         *KeyMap
	items        []Item
	selected     int
	scrollOffset int
	detail       bool
	width        int
	height       int
}

// New creates a browser over items.
func New(items []Item) *Model {
	return &Model{
		keys:  DefaultKeyMap(),
		items: items,
	}
}

// Run shows the browser until the user quits or ctx is cancelled.
func Run(ctx context.Context, items []Item, in io.Reader, out io.Writer) error {
	p := tea.NewProgram(New(items),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("findings browser: %w", err)
	}
	return nil
}

// Selected returns the index of the highlighted finding.
func (m *Model) Selected() int {
	return m.selected
}

// InDetail reports whether the detail pane is open.
func (m *Model) InDetail() bool {
	return m.detail
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.detail = false
	case m.detail:
		// The detail pane only answers to Back and Quit.
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Select):
		m.detail = len(m.items) > 0
	}
	return m, nil
}

// visibleRows is the number of list rows that fit the window.
func (m *Model) visibleRows() int {
	if m.height <= 0 {
		return len(m.items)
	}
	// Title, blank line and help take three lines.
	return max(m.height-3, 1)
}

// adjustScroll keeps the selection inside the visible rows.
func (m *Model) adjustScroll() {
	rows := m.visibleRows()
	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	}
	if m.selected >= m.scrollOffset+rows {
		m.scrollOffset = m.selected - rows + 1
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.detail {
		return m.detailView()
	}
	return m.listView()
}

func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Findings (%d)", len(m.items))))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("No findings."))
		b.WriteString("\n\n")
		b.WriteString(helpLine(m.keys.Quit))
		return b.String()
	}

	end := min(m.scrollOffset+m.visibleRows(), len(m.items))
	for i := m.scrollOffset; i < end; i++ {
		b.WriteString(m.row(i))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpLine(m.keys.ListHelp()...))
	return b.String()
}

func (m *Model) row(i int) string {
	item := m.items[i]
	f := item.Finding
	kind := f.Kind()

	cursor := "  "
	if i == m.selected {
		cursor = "> "
	}
	line := fmt.Sprintf("%s%s #%d %s [%d:%d] %.0f%%", cursor, item.DocumentID, f.Window.Sequence,
		kindStyle(kind).Render(string(kind)), f.Window.Start, f.Window.End, f.Verdict.Confidence)
	if i == m.selected {
		return selectedStyle.Render(line)
	}
	return line
}

func (m *Model) detailView() string {
	item := m.items[m.selected]
	f := item.Finding
	kind := f.Kind()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s #%d", item.DocumentID, f.Window.Sequence)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Kind:        %s\n", kindStyle(kind).Render(string(kind)))
	fmt.Fprintf(&b, "Offsets:     [%d:%d]\n", f.Window.Start, f.Window.End)
	fmt.Fprintf(&b, "AI score:    %.1f\n", f.AIScore)
	fmt.Fprintf(&b, "Confidence:  %.0f%%\n", f.Verdict.Confidence)
	if f.Hit != nil {
		fmt.Fprintf(&b, "Source:      %s (similarity %.3f)\n", f.Hit.URL, f.Hit.Score)
	}
	if f.Verdict.Justification != "" {
		fmt.Fprintf(&b, "Reason:      %s\n", f.Verdict.Justification)
	}

	text := f.Window.Span(item.Raw)
	if text == "" {
		text = f.Window.Text
	}
	b.WriteString("\n")
	wrap := lipgloss.NewStyle()
	if m.width > 0 {
		wrap = wrap.Width(m.width)
	}
	b.WriteString(wrap.Render(strings.TrimSpace(text)))
	b.WriteString("\n\n")
	b.WriteString(helpLine(m.keys.DetailHelp()...))
	return b.String()
}

// helpLine renders bindings as "key desc" pairs.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(parts, " • "))
}
