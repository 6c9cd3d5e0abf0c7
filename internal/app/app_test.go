package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/session"
	ordersview "github.com/procurehq/console/internal/ui/orders"
)

// authedModel builds a root model in the authenticated state without
// going through the session manager.
func authedModel() Model {
	m := New(nil, nil, nil, &model.AppConfig{}, zap.NewNop())
	m.session = session.Session{
		State: session.StateAuthenticated,
		User: &model.User{
			ID:    "u1",
			Email: "pat@example.com",
			Role:  model.RoleRequester,
		},
	}
	m.ready = true
	return m
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// containsQuit walks a command tree looking for tea.Quit.
func containsQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	switch msg := cmd().(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if containsQuit(c) {
				return true
			}
		}
	}
	return false
}

func TestGlobalKeysYieldToLiveListFilter(t *testing.T) {
	assert := assert.New(t)
	m := authedModel()
	m.currentView = ViewOrders

	// Seed the order list so the filter has rows to match against.
	next, _ := m.Update(ordersview.LoadedMsg{Orders: []model.PurchaseOrder{
		{ID: "o1", Number: "PO-1", SupplierName: "Acme Quality Supply"},
		{ID: "o2", Number: "PO-2", SupplierName: "Office Direct"},
	}})
	m = next.(Model)

	// "/" opens the filter input.
	next, _ = m.Update(keyRunes('/'))
	m = next.(Model)

	// "q" lands in the filter instead of quitting.
	next, cmd := m.Update(keyRunes('q'))
	m = next.(Model)
	assert.False(containsQuit(cmd), "typing into a filter must not quit")

	// "L" lands in the filter instead of signing out.
	next, _ = m.Update(keyRunes('L'))
	m = next.(Model)
	assert.True(m.session.Authenticated(), "typing into a filter must not log out")
	assert.Equal(ViewOrders, m.currentView)
}

func TestQuitKeyWithoutLiveFilter(t *testing.T) {
	m := authedModel()
	m.currentView = ViewOrders

	_, cmd := m.Update(keyRunes('q'))
	require.NotNil(t, cmd)
	assert.True(t, containsQuit(cmd))
}
