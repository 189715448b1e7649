// Package menu implements the interactive service picker shown by
// `metis menu` (and by a bare `metis` invocation): a category-grouped
// multi-select over the discovered services followed by an action choice.
// The picker only collects the selection; the caller executes it.
package menu

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

// Action is what the user chose to do with the selected services.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionBuild
)

// String returns the verb shown on the action button.
func (a Action) String() string {
	switch a {
	case ActionStart:
		return "Start"
	case ActionBuild:
		return "Build"
	}
	return "Cancel"
}

// Selection is the picker outcome. Services preserves display order.
type Selection struct {
	Action   Action
	Services []string
}

type stage int

const (
	stagePick stage = iota
	stageAction
)

// row is one rendered line: either a category header or a selectable
// service.
type row struct {
	header bool
	label  string
	svc    *stack.Service
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	All     key.Binding
	None    key.Binding
	Confirm key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		None:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "none")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.All, k.None, k.Confirm, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type model struct {
	rows     []row
	running  map[string]string
	stack    *stack.Stack
	cursor   int
	selected map[string]bool
	stage    stage
	action   Action
	keys     keyMap
	styles   styles
	help     help.Model
	width    int
	quitting bool
	result   Selection
}

func newModel(st *stack.Stack, running map[string]string) model {
	var rows []row
	for _, group := range st.ByCategory() {
		rows = append(rows, row{header: true, label: group.Name})
		for _, svc := range group.Services {
			rows = append(rows, row{svc: svc})
		}
	}

	m := model{
		rows:     rows,
		running:  running,
		stack:    st,
		selected: make(map[string]bool),
		action:   ActionStart,
		keys:     newKeyMap(),
		styles:   newStyles(),
		help:     help.New(),
	}
	m.cursor = m.nextService(-1, 1)
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.stage == stageAction {
			return m.updateAction(msg)
		}
		return m.updatePick(msg)
	}
	return m, nil
}

func (m model) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if next := m.nextService(m.cursor, -1); next >= 0 {
			m.cursor = next
		}

	case key.Matches(msg, m.keys.Down):
		if next := m.nextService(m.cursor, 1); next >= 0 {
			m.cursor = next
		}

	case key.Matches(msg, m.keys.Toggle):
		if svc := m.current(); svc != nil {
			m.selected[svc.ID] = !m.selected[svc.ID]
		}

	case key.Matches(msg, m.keys.All):
		for _, r := range m.rows {
			if r.svc != nil {
				m.selected[r.svc.ID] = true
			}
		}

	case key.Matches(msg, m.keys.None):
		m.selected = make(map[string]bool)

	case key.Matches(msg, m.keys.Confirm):
		if len(m.selection()) > 0 {
			m.stage = stageAction
		}
	}
	return m, nil
}

func (m model) updateAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	order := []Action{ActionStart, ActionBuild, ActionNone}
	pos := 0
	for i, a := range order {
		if a == m.action {
			pos = i
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.stage = stagePick

	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Up):
		if pos > 0 {
			m.action = order[pos-1]
		}

	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Down):
		if pos < len(order)-1 {
			m.action = order[pos+1]
		}

	case key.Matches(msg, m.keys.Confirm):
		if m.action != ActionNone {
			m.result = Selection{Action: m.action, Services: m.selection()}
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Analytical Ecosystem"))
	b.WriteString("\n")

	if section := m.runningView(); section != "" {
		b.WriteString(section)
	}

	if m.stage == stageAction {
		b.WriteString(m.actionView())
		return b.String()
	}

	for i, r := range m.rows {
		if r.header {
			b.WriteString(m.styles.Category.Render(r.label))
			b.WriteString("\n")
			continue
		}

		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("▸ ")
		}

		check := "[ ]"
		style := m.styles.Normal
		if m.selected[r.svc.ID] {
			check = "[x]"
			style = m.styles.Checked
		}

		line := fmt.Sprintf("%s %s", check, r.svc.Name)
		if r.svc.Port != 0 {
			line += m.styles.Detail.Render(fmt.Sprintf("  :%d", r.svc.Port))
		}
		b.WriteString(cursor + style.Render(line) + "\n")
	}

	b.WriteString(m.styles.Muted.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

// runningView lists already-running services with health, URL and
// credentials.
func (m model) runningView() string {
	var lines []string
	for _, id := range m.stack.IDs() {
		status, ok := m.running[id]
		if !ok {
			continue
		}
		svc, _ := m.stack.Lookup(id)

		line := fmt.Sprintf("%s %s", healthIcon(status), svc.Name)
		if svc.URL != "" {
			line += "  " + m.styles.Detail.Render(svc.URL)
		}
		if svc.Credentials != "" {
			line += "  " + m.styles.Detail.Render("("+svc.Credentials+")")
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}
	return m.styles.Subtitle.Render("Running:") + "\n" + strings.Join(lines, "\n") + "\n"
}

func (m model) actionView() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n%d service(s) selected: %s\n\n",
		len(m.selection()), strings.Join(m.selection(), ", ")))

	for _, a := range []Action{ActionStart, ActionBuild, ActionNone} {
		style := m.styles.Button
		if a == m.action {
			style = m.styles.Active
		}
		b.WriteString(style.Render(a.String()))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("←/→ choose · enter confirm · esc back"))
	b.WriteString("\n")
	return b.String()
}

// nextService returns the index of the next selectable row from start in
// direction dir, or -1 when none exists.
func (m model) nextService(start, dir int) int {
	for i := start + dir; i >= 0 && i < len(m.rows); i += dir {
		if !m.rows[i].header {
			return i
		}
	}
	return -1
}

func (m model) current() *stack.Service {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].svc
}

// selection returns the chosen service ids in display order.
func (m model) selection() []string {
	var ids []string
	for _, r := range m.rows {
		if r.svc != nil && m.selected[r.svc.ID] {
			ids = append(ids, r.svc.ID)
		}
	}
	return ids
}

// Run shows the picker and blocks until the user confirms or quits.
// running maps service ids to their inspected container health status.
func Run(st *stack.Stack, running map[string]string) (Selection, error) {
	p := tea.NewProgram(newModel(st, running), tea.WithAltScreen())
	out, err := p.Run()
	if err != nil {
		return Selection{}, cerr.Wrap(err, "run service picker")
	}
	final, ok := out.(model)
	if !ok {
		return Selection{}, cerr.New("unexpected picker model type")
	}
	return final.result, nil
}
