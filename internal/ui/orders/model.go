package orders

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/keys"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/store"
	"github.com/procurehq/console/internal/theme"
)

const loadTimeout = 15 * time.Second

// LoadedMsg carries an order list query result.
type LoadedMsg struct {
	Orders    []model.PurchaseOrder
	FromCache bool
	Err       error
}

// Item wraps a model.PurchaseOrder so it can be used in a bubbles/list.
type Item struct {
	Order model.PurchaseOrder
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string {
	return i.Order.Number + " " + i.Order.SupplierName
}

// ItemDelegate implements list.ItemDelegate for rendering order rows.
type ItemDelegate struct{}

func (d ItemDelegate) Height() int  { return 1 }
func (d ItemDelegate) Spacing() int { return 0 }

func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single order row: number, status badge, supplier,
// total, expected delivery.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	o := it.Order

	status := theme.StatusStyle(o.Status).Render(o.Status)
	due := ""
	if o.ExpectedAt != nil {
		due = theme.HelpStyle.Render("due " + o.ExpectedAt.Format("Jan 02"))
	}

	line := fmt.Sprintf("%s %s %s %.2f %s",
		o.Number, status, o.SupplierName, o.Total, due)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

// Model is the purchase order list view.
type Model struct {
	client *api.Client
	cache  store.Store
	logger *zap.Logger
	keys   *keys.KeyMap
	list   list.Model
	status string
	width  int
	height int
}

// New creates a new order list view model.
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
	l.Title = "Purchase Orders"
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

// Load fetches the order list, falling back to the local cache when the
// backend is unreachable.
func (m Model) Load() tea.Cmd {
	client := m.client
	cache := m.cache
	logger := m.logger

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		orders, err := client.ListOrders(ctx, "")
		if err == nil {
			if cache != nil {
				if cerr := cache.UpsertOrders(ctx, orders); cerr != nil {
					logger.Warn("caching orders failed", zap.Error(cerr))
				}
			}
			return LoadedMsg{Orders: orders}
		}

		logger.Warn("order fetch failed; serving cache", zap.Error(err))
		if cache == nil {
			return LoadedMsg{Err: err}
		}

		cached, cerr := cache.Orders(ctx, "")
		if cerr != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Orders: cached, FromCache: true, Err: err}
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages for the order view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Err != nil && msg.Orders == nil {
			m.status = "load failed: " + msg.Err.Error()
			return m, nil
		}
		if msg.FromCache {
			m.status = "offline: showing cached orders"
		} else {
			m.status = ""
		}
		items := make([]list.Item, len(msg.Orders))
		for i, o := range msg.Orders {
			items[i] = Item{Order: o}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering &&
			key.Matches(msg, m.keys.Refresh) {
			return m, m.Load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Filtering reports whether the list's filter input is capturing
// keystrokes.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// View renders the order list.
func (m Model) View() string {
	view := m.list.View()
	if m.status != "" {
		view += "\n" + theme.HelpStyle.Render(m.status)
	}
	return view
}

// SetSize updates the dimensions of the order view.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
