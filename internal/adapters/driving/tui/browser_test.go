package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h24486064/plagiarism-detection/internal/core/domain"
)

const browserRaw = "Literature Review\nCopied sentence here.\nGenerated prose here.\n"

func testReports() []*domain.Report {
	return []*domain.Report{
		{
			Document: domain.Document{ID: "a.txt", Content: browserRaw},
			Findings: []domain.Finding{
				{
					Window:  domain.Window{Sequence: 0, Start: 18, End: 39, Text: "copied sentence here."},
					AIScore: 20,
					Hit:     &domain.Hit{URL: "https://example.com/src", Score: 0.91},
					Verdict: domain.Verdict{WebPlagiarism: true, Confidence: 88, Justification: "Same wording."},
				},
				{
					Window:  domain.Window{Sequence: 1, Start: 40, End: 61, Text: "generated prose here."},
					AIScore: 94,
					Verdict: domain.Verdict{AIGenerated: true, Confidence: 94},
				},
			},
		},
		nil,
		{Document: domain.Document{ID: "clean.txt"}},
		{
			Document: domain.Document{ID: "b.txt"},
			Findings: []domain.Finding{
				{Window: domain.Window{Sequence: 3, Text: "only normalised text"}, Verdict: domain.Verdict{Confidence: 50}},
			},
		},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, msgs ...tea.Msg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		require.Same(t, m, next)
	}
	return cmd
}

func TestItems(t *testing.T) {
	items := Items(testReports())

	require.Len(t, items, 3)
	assert.Equal(t, "a.txt", items[0].DocumentID)
	assert.Equal(t, browserRaw, items[0].Raw)
	assert.Equal(t, 1, items[1].Finding.Window.Sequence)
	assert.Equal(t, "b.txt", items[2].DocumentID)
}

func TestModel_Navigation(t *testing.T) {
	m := New(Items(testReports()))
	assert.Nil(t, m.Init())

	press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.Selected())

	press(t, m, keyRunes("j"), tea.KeyMsg{Type: tea.KeyDown}, keyRunes("j"))
	assert.Equal(t, 2, m.Selected())

	press(t, m, keyRunes("k"))
	assert.Equal(t, 1, m.Selected())
}

func TestModel_DetailPane(t *testing.T) {
	m := New(Items(testReports()))

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.InDetail())

	view := m.View()
	assert.Contains(t, view, "a.txt #0")
	assert.Contains(t, view, "plagiarism")
	assert.Contains(t, view, "Offsets:     [18:39]")
	assert.Contains(t, view, "https://example.com/src (similarity 0.910)")
	assert.Contains(t, view, "Same wording.")
	assert.Contains(t, view, "Copied sentence here.")
	assert.Contains(t, view, "esc back")

	// Movement is ignored until the pane is closed.
	press(t, m, keyRunes("j"))
	assert.Equal(t, 0, m.Selected())

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.InDetail())
}

func TestModel_DetailFallsBackToWindowText(t *testing.T) {
	m := New(Items(testReports()))

	press(t, m, keyRunes("j"), keyRunes("j"), tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, m.View(), "only normalised text")
}

func TestModel_Quit(t *testing.T) {
	m := New(Items(testReports()))

	cmd := press(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_ListView(t *testing.T) {
	m := New(Items(testReports()))

	view := m.View()
	assert.Contains(t, view, "Findings (3)")
	assert.Contains(t, view, "> a.txt #0 plagiarism [18:39] 88%")
	assert.Contains(t, view, "  a.txt #1 ai [40:61] 94%")
	assert.Contains(t, view, "enter details")
}

func TestModel_EmptyList(t *testing.T) {
	m := New(nil)

	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.InDetail())
	assert.Contains(t, m.View(), "No findings.")
}

func TestModel_ScrollsWithSelection(t *testing.T) {
	m := New(Items(testReports()))

	// Room for a single row.
	press(t, m, tea.WindowSizeMsg{Width: 80, Height: 4})
	press(t, m, keyRunes("j"), keyRunes("j"))

	view := m.View()
	assert.Contains(t, view, "b.txt #3")
	assert.NotContains(t, view, "a.txt #0")

	press(t, m, keyRunes("k"), keyRunes("k"))
	view = m.View()
	assert.Contains(t, view, "a.txt #0")
	assert.NotContains(t, view, "b.txt #3")
}

func TestDefaultKeyMap(t *testing.T) {
	k := DefaultKeyMap()

	assert.Equal(t, []string{"q", "ctrl+c"}, k.Quit.Keys())
	assert.Len(t, k.ListHelp(), 4)
	assert.Len(t, k.DetailHelp(), 2)
}
