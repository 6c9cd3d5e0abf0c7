package mailbox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/procurehq/console/internal/model"
)

// subjectPrefixes maps the subject lines the procurement backend's
// mailer uses to the corresponding notification types.
var subjectPrefixes = []struct {
	prefix string
	typ    model.NotificationType
}{
	{"Request submitted:", model.NotificationRequestSubmitted},
	{"Request approved:", model.NotificationRequestApproved},
	{"Request rejected:", model.NotificationRequestRejected},
	{"Order created:", model.NotificationOrderCreated},
	{"Order shipped:", model.NotificationOrderShipped},
	{"Order received:", model.NotificationOrderReceived},
	{"Budget warning:", model.NotificationBudgetWarning},
	{"Budget exceeded:", model.NotificationBudgetExceeded},
	{"Contract expiring:", model.NotificationContractExpiring},
}

// ParseNotification converts a procurement email into a local
// notification record. Returns false for messages whose subject does
// not match any known event pattern. Mail-derived ids carry a "mail:"
// prefix so mutations on them stay local.
func ParseNotification(msg Message) (model.Notification, bool) {
	subject := strings.TrimSpace(msg.Subject)

	// The mailer wraps subjects in a "[Procurement]" tag.
	subject = strings.TrimSpace(strings.TrimPrefix(subject, "[Procurement]"))

	for _, sp := range subjectPrefixes {
		if !strings.HasPrefix(subject, sp.prefix) {
			continue
		}

		title := strings.TrimSpace(strings.TrimPrefix(subject, sp.prefix))
		if title == "" {
			title = subject
		}

		return model.Notification{
			ID:      fmt.Sprintf("mail:%d", msg.UID),
			Type:    sp.typ,
			Title:   title,
			Message: firstLine(msg.TextBody),
			Metadata: map[string]string{
				"source":      "mailbox",
				"from":        msg.From,
				"mailbox_uid": strconv.FormatUint(uint64(msg.UID), 10),
			},
			Read:      msg.Seen,
			CreatedAt: msg.Date,
		}, true
	}

	return model.Notification{}, false
}

// firstLine returns the first non-empty line of the body, trimmed.
func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
