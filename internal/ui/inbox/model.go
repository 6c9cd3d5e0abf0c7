package inbox

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/procurehq/console/internal/keys"
	"github.com/procurehq/console/internal/model"
	appsync "github.com/procurehq/console/internal/sync"
	"github.com/procurehq/console/internal/theme"
)

// NotificationsMsg replaces the view's list with a fresh inbox snapshot.
type NotificationsMsg struct {
	Notifications []model.Notification
}

// Model is the notification inbox view.
type Model struct {
	list     list.Model
	poller   *appsync.Poller
	keys     *keys.KeyMap
	selected *model.Notification
	width    int
	height   int
}

// New creates a new inbox view model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetPoller installs the poller whose inbox this view renders. Called
// whenever a session starts, since pollers are per-session.
func (m *Model) SetPoller(p *appsync.Poller) {
	m.poller = p
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case NotificationsMsg:
		items := make([]list.Item, len(msg.Notifications))
		for i, n := range msg.Notifications {
			items[i] = Item{Notification: n}
		}
		cmd := m.list.SetItems(items)
		// Keep the open detail in sync with the refreshed data.
		if m.selected != nil {
			if n, ok := m.find(m.selected.ID); ok {
				m.selected = &n
			} else {
				m.selected = nil
			}
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes key input for the inbox view.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.poller == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if it, ok := m.list.SelectedItem().(Item); ok {
			n := it.Notification
			m.selected = &n
			// Opening a notification marks it read.
			return m, tea.Batch(
				m.poller.MarkRead(n.ID),
				m.refreshFromInbox(),
			)
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.selected != nil {
			m.selected = nil
			return m, nil
		}

	case key.Matches(msg, m.keys.MarkRead):
		if it, ok := m.list.SelectedItem().(Item); ok {
			return m, tea.Batch(
				m.poller.MarkRead(it.Notification.ID),
				m.refreshFromInbox(),
			)
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkAllRead):
		return m, tea.Batch(
			m.poller.MarkAllRead(),
			m.refreshFromInbox(),
		)

	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.list.SelectedItem().(Item); ok {
			if m.selected != nil && m.selected.ID == it.Notification.ID {
				m.selected = nil
			}
			return m, tea.Batch(
				m.poller.Delete(it.Notification.ID),
				m.refreshFromInbox(),
			)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.poller.Refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// refreshFromInbox re-renders the list from the poller's inbox after an
// optimistic mutation, without waiting for the next poll.
func (m Model) refreshFromInbox() tea.Cmd {
	items := m.poller.Inbox().Items()
	return func() tea.Msg {
		return NotificationsMsg{Notifications: items}
	}
}

// find returns the notification with the given id from the list items.
func (m Model) find(id string) (model.Notification, bool) {
	for _, item := range m.list.Items() {
		if it, ok := item.(Item); ok && it.Notification.ID == id {
			return it.Notification, true
		}
	}
	return model.Notification{}, false
}

// View renders the inbox list, or the detail panel when a notification
// is open.
func (m Model) View() string {
	if m.selected != nil {
		return m.renderDetail()
	}
	return m.list.View()
}

// renderDetail renders a single notification's full content.
func (m Model) renderDetail() string {
	n := m.selected

	header := theme.TypeStyle(n.Type.Urgent()).Render(typeLabel(n.Type)) +
		" " + lipgloss.NewStyle().Bold(true).Render(n.Title)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(n.Message)

	if len(n.Metadata) > 0 {
		b.WriteString("\n")
		for k, v := range n.Metadata {
			b.WriteString(fmt.Sprintf("\n%s: %s", k, v))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		n.CreatedAt.Format("Jan 02 15:04") + " · esc to go back",
	))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(b.String())
}

// SetSize updates the dimensions of the inbox view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
