package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/console/internal/model"
)

func TestParseNotificationRecognizedSubject(t *testing.T) {
	assert := assert.New(t)

	sent := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	msg := Message{
		UID:     412,
		Subject: "[Procurement] Request approved: PR-2026-0042 New laptops",
		From:    "noreply@procurement.corp.example.com",
		Date:    sent,
		Seen:    true,
		TextBody: "\n  Your request PR-2026-0042 was approved by Dana.\n" +
			"Further details are in the portal.\n",
	}

	n, ok := ParseNotification(msg)
	require.True(t, ok)

	assert.Equal("mail:412", n.ID)
	assert.Equal(model.NotificationRequestApproved, n.Type)
	assert.Equal("PR-2026-0042 New laptops", n.Title)
	assert.Equal("Your request PR-2026-0042 was approved by Dana.", n.Message)
	assert.True(n.Read)
	assert.Equal(sent, n.CreatedAt)
	assert.Equal("mailbox", n.Metadata["source"])
	assert.Equal("412", n.Metadata["mailbox_uid"])
	assert.Equal(msg.From, n.Metadata["from"])
}

func TestParseNotificationWithoutTag(t *testing.T) {
	assert := assert.New(t)

	n, ok := ParseNotification(Message{
		UID:     7,
		Subject: "Budget exceeded: Engineering 2026-Q3",
	})
	require.True(t, ok)
	assert.Equal(model.NotificationBudgetExceeded, n.Type)
	assert.Equal("Engineering 2026-Q3", n.Title)
	assert.True(n.Type.Urgent())
}

func TestParseNotificationSubjectTable(t *testing.T) {
	cases := map[string]model.NotificationType{
		"Request submitted: PR-1":  model.NotificationRequestSubmitted,
		"Request rejected: PR-2":   model.NotificationRequestRejected,
		"Order created: PO-3":      model.NotificationOrderCreated,
		"Order shipped: PO-4":      model.NotificationOrderShipped,
		"Order received: PO-5":     model.NotificationOrderReceived,
		"Budget warning: Sales Q3": model.NotificationBudgetWarning,
		"Contract expiring: CT-9":  model.NotificationContractExpiring,
	}

	for subject, want := range cases {
		n, ok := ParseNotification(Message{UID: 1, Subject: subject})
		require.True(t, ok, "subject %q", subject)
		assert.Equal(t, want, n.Type, "subject %q", subject)
	}
}

func TestParseNotificationUnknownSubject(t *testing.T) {
	_, ok := ParseNotification(Message{
		UID:     9,
		Subject: "Lunch menu for Friday",
	})
	assert.False(t, ok)

	// Unread mail keeps the notification unread.
	n, ok := ParseNotification(Message{
		UID:     10,
		Subject: "Order shipped: PO-2026-0108",
		Seen:    false,
	})
	require.True(t, ok)
	assert.False(t, n.Read)
}

func TestFirstLine(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("hello", firstLine("\n\n  hello \nworld"))
	assert.Equal("", firstLine("   \n\t\n"))
	assert.Equal("single", firstLine("single"))
}
