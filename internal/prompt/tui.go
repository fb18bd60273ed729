package prompt

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vmunix/vidfmt/pkg/filename"
	"github.com/vmunix/vidfmt/pkg/sites"
)

// TUI asks for all missing display names on one form. Conflicts fall back to line prompts.
type TUI struct {
	in   io.Reader
	out  io.Writer
	line *Line
}

// NewTUI creates a terminal prompter over in and out.
func NewTUI(in io.Reader, out io.Writer) *TUI {
	return &TUI{in: in, out: out, line: NewLine(in, out)}
}

// SiteNames runs the form until every key has a name or the person cancels.
func (t *TUI) SiteNames(ctx context.Context, esc *filename.EscalationError) (map[string]string, error) {
	p := tea.NewProgram(newSiteNamesModel(esc),
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("site name form: %w", err)
	}

	m := final.(siteNamesModel)
	if m.aborted {
		return nil, ErrAborted
	}
	return m.values(), nil
}

// Conflict asks on a single line.
func (t *TUI) Conflict(key, existing, imported string) (sites.ConflictPolicy, error) {
	return t.line.Conflict(key, existing, imported)
}

// siteNamesModel is a form with one text input per unmapped key.
type siteNamesModel struct {
	keys        []string
	suggestions map[string][]string
	inputs      []textinput.Model
	focus       int
	err         string
	done        bool
	aborted     bool
}

func newSiteNamesModel(esc *filename.EscalationError) siteNamesModel {
	m := siteNamesModel{
		keys:        esc.Keys,
		suggestions: esc.Suggestions,
		inputs:      make([]textinput.Model, len(esc.Keys)),
	}
	for i := range esc.Keys {
		ti := textinput.New()
		ti.Placeholder = "Display name"
		ti.CharLimit = 128
		ti.Width = 40
		ti.Prompt = "> "
		ti.PromptStyle = promptStyle
		m.inputs[i] = ti
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

func (m siteNamesModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m siteNamesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			cmd := m.moveFocus(m.focus + 1)
			return m, cmd
		case tea.KeyShiftTab, tea.KeyUp:
			cmd := m.moveFocus(m.focus - 1)
			return m, cmd
		case tea.KeyEnter:
			return m.submit()
		}
	}

	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit advances to the next empty field, or finishes once all fields are filled.
func (m siteNamesModel) submit() (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		m.done = true
		return m, tea.Quit
	}
	if strings.TrimSpace(m.inputs[m.focus].Value()) == "" {
		m.err = fmt.Sprintf("%s needs a display name", m.keys[m.focus])
		return m, nil
	}
	m.err = ""
	for i := range m.inputs {
		idx := (m.focus + 1 + i) % len(m.inputs)
		if strings.TrimSpace(m.inputs[idx].Value()) == "" {
			cmd := m.moveFocus(idx)
			return m, cmd
		}
	}
	m.done = true
	return m, tea.Quit
}

// moveFocus focuses input i, wrapping around.
func (m *siteNamesModel) moveFocus(i int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m siteNamesModel) values() map[string]string {
	out := make(map[string]string, len(m.keys))
	for i, k := range m.keys {
		out[k] = strings.TrimSpace(m.inputs[i].Value())
	}
	return out
}

func (m siteNamesModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Unmapped sites"))
	b.WriteString("\n")
	for i, k := range m.keys {
		b.WriteString(keyStyle.Render(k))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
		if hits := m.suggestions[k]; len(hits) > 0 {
			b.WriteString(hintStyle.Render("similar: " + strings.Join(hits, ", ")))
			b.WriteString("\n")
		}
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("tab/shift+tab: move • enter: next/confirm • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}
