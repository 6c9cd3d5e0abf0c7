package requests

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/theme"
)

// Item wraps a model.PurchaseRequest so it can be used in a bubbles/list.
type Item struct {
	Request model.PurchaseRequest
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string {
	return i.Request.Number + " " + i.Request.Title
}

// ItemDelegate implements list.ItemDelegate for rendering request rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single request row: number, priority, status badge,
// title, total.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	r := it.Request

	priority := theme.PriorityStyle(r.Priority).Render(fmt.Sprintf("P%d", r.Priority))
	status := theme.StatusStyle(r.Status).Render(r.Status)
	total := theme.HelpStyle.Render(fmt.Sprintf("%.2f", r.Total))

	line := fmt.Sprintf("%s %s %s %s %s", r.Number, priority, status, r.Title, total)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}
