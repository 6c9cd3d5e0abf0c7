package requests

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/keys"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/store"
	"github.com/procurehq/console/internal/theme"
)

const loadTimeout = 15 * time.Second

// LoadedMsg carries a request list query result. FromCache is set when
// the backend was unreachable and the local mirror served instead.
type LoadedMsg struct {
	Requests  []model.PurchaseRequest
	FromCache bool
	Err       error
}

// ActionDoneMsg reports the outcome of a submit, approve, or reject.
type ActionDoneMsg struct {
	Request *model.PurchaseRequest
	Verb    string
	Err     error
}

// Model is the purchase request list view.
type Model struct {
	client   *api.Client
	cache    store.Store
	logger   *zap.Logger
	keys     *keys.KeyMap
	user     *model.User
	list     list.Model
	selected *model.PurchaseRequest
	status   string
	width    int
	height   int
}

// New creates a new request list view model.
func New(
	client *api.Client,
	cache store.Store,
	logger *zap.Logger,
	k *keys.KeyMap,
	width, height int,
) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Purchase Requests"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		client: client,
		cache:  cache,
		logger: logger,
		keys:   k,
		list:   l,
		width:  width,
		height: height,
	}
}

// SetUser records who is signed in so role-gated actions can be hidden.
func (m *Model) SetUser(u *model.User) {
	m.user = u
}

// Load fetches the request list from the backend, falling back to the
// local cache when the backend is unreachable.
func (m Model) Load() tea.Cmd {
	client := m.client
	cache := m.cache
	logger := m.logger

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		page, err := client.ListRequests(ctx, api.RequestListOptions{PageSize: 100})
		if err == nil {
			if cache != nil {
				if cerr := cache.UpsertRequests(ctx, page.Items); cerr != nil {
					logger.Warn("caching requests failed", zap.Error(cerr))
				}
			}
			return LoadedMsg{Requests: page.Items}
		}

		logger.Warn("request fetch failed; serving cache", zap.Error(err))
		if cache == nil {
			return LoadedMsg{Err: err}
		}

		cached, cerr := cache.Requests(ctx, store.RequestFilter{
			SortBy:   "updated_at",
			SortDesc: true,
		})
		if cerr != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Requests: cached, FromCache: true, Err: err}
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the request view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil && msg.Requests == nil {
			m.status = "load failed: " + msg.Err.Error()
			return m, nil
		}
		if msg.FromCache {
			m.status = "offline: showing cached requests"
		} else {
			m.status = ""
		}
		items := make([]list.Item, len(msg.Requests))
		for i, r := range msg.Requests {
			items[i] = Item{Request: r}
		}
		cmd := m.list.SetItems(items)
		if m.selected != nil {
			m.selected = findRequest(msg.Requests, m.selected.ID)
		}
		return m, cmd

	case ActionDoneMsg:
		if msg.Err != nil {
			m.status = msg.Verb + " failed: " + msg.Err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s %s", msg.Request.Number, msg.Verb)
		if m.selected != nil && m.selected.ID == msg.Request.ID {
			m.selected = msg.Request
		}
		return m, m.Load()

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKeys processes key input for the request view.
func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		if it, ok := m.list.SelectedItem().(Item); ok {
			r := it.Request
			m.selected = &r
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.selected != nil {
			m.selected = nil
			return m, nil
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.Load()

	case key.Matches(msg, m.keys.Submit):
		if r := m.current(); r != nil && r.Editable() {
			return m, m.action(r.ID, "submitted", func(ctx context.Context, id string) (*model.PurchaseRequest, error) {
				return m.client.SubmitRequest(ctx, id)
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Approve):
		if r := m.current(); r != nil && m.canApprove() && r.Status == model.RequestStatusSubmitted {
			return m, m.action(r.ID, "approved", func(ctx context.Context, id string) (*model.PurchaseRequest, error) {
				return m.client.ApproveRequest(ctx, id, "")
			})
		}
		return m, nil

	case key.Matches(msg, m.keys.Reject):
		if r := m.current(); r != nil && m.canApprove() && r.Status == model.RequestStatusSubmitted {
			return m, m.action(r.ID, "rejected", func(ctx context.Context, id string) (*model.PurchaseRequest, error) {
				return m.client.RejectRequest(ctx, id, "rejected from console")
			})
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// current returns the request the user is acting on: the open detail if
// any, otherwise the list selection.
func (m Model) current() *model.PurchaseRequest {
	if m.selected != nil {
		return m.selected
	}
	if it, ok := m.list.SelectedItem().(Item); ok {
		r := it.Request
		return &r
	}
	return nil
}

func (m Model) canApprove() bool {
	return m.user != nil && m.user.Role.CanApprove()
}

// action runs a workflow transition and reports the outcome.
func (m Model) action(
	id, verb string,
	call func(ctx context.Context, id string) (*model.PurchaseRequest, error),
) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		req, err := call(ctx, id)
		return ActionDoneMsg{Request: req, Verb: verb, Err: err}
	}
}

// Filtering reports whether the list's filter input is capturing
// keystrokes.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// View renders the request list, or the detail panel when a request is
// open.
func (m Model) View() string {
	if m.selected != nil {
		return m.renderDetail()
	}

	view := m.list.View()
	if m.status != "" {
		view += "\n" + theme.HelpStyle.Render(m.status)
	}
	return view
}

// renderDetail renders a single request with its line items.
func (m Model) renderDetail() string {
	r := m.selected

	header := lipgloss.NewStyle().Bold(true).Render(r.Number+" "+r.Title) +
		"  " + theme.StatusStyle(r.Status).Render(r.Status) +
		" " + theme.PriorityStyle(r.Priority).Render(fmt.Sprintf("P%d", r.Priority))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Requester:  %s\n", r.Requester)
	fmt.Fprintf(&b, "Department: %s\n", r.Department)
	fmt.Fprintf(&b, "Category:   %s\n\n", r.Category)

	for _, item := range r.Items {
		fmt.Fprintf(&b, "  %3d × %-40s %10.2f\n",
			item.Quantity, item.Description, item.Subtotal())
	}
	fmt.Fprintf(&b, "\n  Total: %.2f\n", r.Total)

	hints := []string{"esc back"}
	if r.Editable() {
		hints = append(hints, "s submit")
	}
	if m.canApprove() && r.Status == model.RequestStatusSubmitted {
		hints = append(hints, "a approve", "X reject")
	}
	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(strings.Join(hints, " · ")))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(b.String())
}

// SetSize updates the dimensions of the request view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func findRequest(requests []model.PurchaseRequest, id string) *model.PurchaseRequest {
	for i := range requests {
		if requests[i].ID == id {
			return &requests[i]
		}
	}
	return nil
}
