// pkg/menu/menu_test.go

package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/metis/pkg/stack"
)

func pickerStack() *stack.Stack {
	return &stack.Stack{
		Root: "/tmp/stack",
		Services: map[string]*stack.Service{
			"postgres": {ID: "postgres", Name: "PostgreSQL", Category: "database", Port: 5432},
			"redis":    {ID: "redis", Name: "Redis", Category: "cache", Port: 6379},
			"superset": {
				ID: "superset", Name: "Superset", Category: "visualization",
				Port: 8088, URL: "http://localhost:8088", Credentials: "admin / admin",
			},
		},
	}
}

func press(t *testing.T, m tea.Model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	out, ok := m.(model)
	require.True(t, ok)
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelGroupsRowsByCategory(t *testing.T) {
	m := newModel(pickerStack(), nil)

	require.Len(t, m.rows, 6)
	assert.True(t, m.rows[0].header)
	assert.Equal(t, "Databases", m.rows[0].label)
	assert.Equal(t, "postgres", m.rows[1].svc.ID)
	assert.Equal(t, "Cache", m.rows[2].label)
	assert.Equal(t, "redis", m.rows[3].svc.ID)
	assert.Equal(t, "Visualization", m.rows[4].label)
	assert.Equal(t, "superset", m.rows[5].svc.ID)

	// cursor starts on the first selectable row
	assert.Equal(t, 1, m.cursor)
}

func TestToggleAndConfirmStart(t *testing.T) {
	m := press(t, newModel(pickerStack(), nil),
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.Equal(t, stageAction, m.stage)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.quitting)
	assert.Equal(t, ActionStart, m.result.Action)
	assert.Equal(t, []string{"postgres", "redis"}, m.result.Services)
}

func TestCursorSkipsHeaders(t *testing.T) {
	m := press(t, newModel(pickerStack(), nil), tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "redis", m.rows[m.cursor].svc.ID)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "postgres", m.rows[m.cursor].svc.ID)

	// moving up from the first service stays put
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "postgres", m.rows[m.cursor].svc.ID)
}

func TestSelectAllAndNone(t *testing.T) {
	m := press(t, newModel(pickerStack(), nil), runes("a"))
	assert.Equal(t, []string{"postgres", "redis", "superset"}, m.selection())

	m = press(t, m, runes("n"))
	assert.Empty(t, m.selection())

	// enter with an empty selection stays on the pick stage
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stagePick, m.stage)
}

func TestActionNavigation(t *testing.T) {
	m := press(t, newModel(pickerStack(), nil),
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyRight},
	)
	assert.Equal(t, ActionBuild, m.action)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ActionBuild, m.result.Action)
	assert.Equal(t, []string{"postgres"}, m.result.Services)
}

func TestCancelActionReturnsNone(t *testing.T) {
	m := press(t, newModel(pickerStack(), nil),
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.True(t, m.quitting)
	assert.Equal(t, ActionNone, m.result.Action)
	assert.Empty(t, m.result.Services)
}

func TestEscReturnsFromActionStage(t *testing.T) {
	m := press(t, newModel(pickerStack(), nil),
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyEsc},
	)
	assert.Equal(t, stagePick, m.stage)
	assert.False(t, m.quitting)
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.Msg{
		runes("q"),
		tea.KeyMsg{Type: tea.KeyCtrlC},
		tea.KeyMsg{Type: tea.KeyEsc},
	} {
		m := press(t, newModel(pickerStack(), nil), msg)
		assert.True(t, m.quitting)
		assert.Equal(t, ActionNone, m.result.Action)
	}
}

func TestViewShowsRunningServices(t *testing.T) {
	m := newModel(pickerStack(), map[string]string{"superset": "healthy"})
	view := m.View()

	assert.Contains(t, view, "Running:")
	assert.Contains(t, view, "🟢")
	assert.Contains(t, view, "http://localhost:8088")
	assert.Contains(t, view, "admin / admin")
}

func TestViewMarksSelection(t *testing.T) {
	m := newModel(pickerStack(), nil)
	assert.NotContains(t, m.View(), "[x]")

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Contains(t, m.View(), "[x]")
	assert.Contains(t, m.View(), "Databases")
}

func TestHealthIcon(t *testing.T) {
	assert.Equal(t, "🟢", healthIcon("healthy"))
	assert.Equal(t, "🟢", healthIcon("none"))
	assert.Equal(t, "🔴", healthIcon("unhealthy"))
	assert.Equal(t, "🟡", healthIcon("starting"))
	assert.Equal(t, "⚫", healthIcon("unknown"))
}
