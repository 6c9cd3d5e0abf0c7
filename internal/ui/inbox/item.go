package inbox

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/theme"
)

// Item wraps a model.Notification so it can be used in a bubbles/list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Notification.Title }

// Title returns the notification headline for the list.
func (i Item) Title() string { return i.Notification.Title }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	parts := []string{
		string(i.Notification.Type),
		relativeTime(i.Notification.CreatedAt),
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering inbox rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single inbox row: unread marker, type badge, title,
// relative age.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}

	n := it.Notification

	marker := " "
	if !n.Read {
		marker = "●"
	}

	typeBadge := theme.TypeStyle(n.Type.Urgent()).Render(typeLabel(n.Type))
	age := theme.HelpStyle.Render(relativeTime(n.CreatedAt))

	line := fmt.Sprintf("%s %s %s %s", marker, typeBadge, n.Title, age)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

// typeLabel returns the compact label shown for a notification type.
func typeLabel(t model.NotificationType) string {
	switch t {
	case model.NotificationRequestSubmitted:
		return "REQ"
	case model.NotificationRequestApproved:
		return "APPROVED"
	case model.NotificationRequestRejected:
		return "REJECTED"
	case model.NotificationOrderCreated, model.NotificationOrderShipped,
		model.NotificationOrderReceived:
		return "ORDER"
	case model.NotificationBudgetWarning, model.NotificationBudgetExceeded:
		return "BUDGET"
	case model.NotificationContractExpiring:
		return "CONTRACT"
	case model.NotificationUserMention:
		return "MENTION"
	default:
		return strings.ToUpper(string(t))
	}
}

// relativeTime formats a timestamp as a compact "how long ago" string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 02")
	}
}
