package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/procurehq/console/internal/model"
)

func notif(id string, read bool) model.Notification {
	return model.Notification{
		ID:        id,
		Type:      model.NotificationRequestSubmitted,
		Title:     "PR-2026-0001 submitted",
		Read:      read,
		CreatedAt: time.Now(),
	}
}

func TestInboxReplaceCountsNewAndUnread(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()

	newCount := inbox.Replace([]model.Notification{
		notif("a", false),
		notif("b", true),
	})
	assert.Equal(2, newCount)
	assert.Equal(2, inbox.Len())
	assert.Equal(1, inbox.Unread())

	// Second replace with one overlapping id counts only the fresh one.
	newCount = inbox.Replace([]model.Notification{
		notif("b", true),
		notif("c", false),
	})
	assert.Equal(1, newCount)
	assert.Equal(2, inbox.Len())
	assert.Equal(1, inbox.Unread())
}

func TestInboxReplaceRecomputesUnread(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()

	inbox.Replace([]model.Notification{notif("a", false), notif("b", false)})
	assert.Equal(2, inbox.Unread())

	// A poll that says everything is read wins over local state.
	inbox.Replace([]model.Notification{notif("a", true), notif("b", true)})
	assert.Equal(0, inbox.Unread())
}

func TestInboxMarkRead(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()
	inbox.Replace([]model.Notification{notif("a", false), notif("b", false)})

	assert.True(inbox.MarkRead("a"))
	assert.Equal(1, inbox.Unread())

	// Re-marking is a no-op and must not decrement again.
	assert.False(inbox.MarkRead("a"))
	assert.Equal(1, inbox.Unread())

	// Unknown ids are a no-op.
	assert.False(inbox.MarkRead("nope"))
	assert.Equal(1, inbox.Unread())

	n, ok := inbox.Get("a")
	assert.True(ok)
	assert.True(n.Read)
}

func TestInboxMarkAllRead(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()
	inbox.Replace([]model.Notification{
		notif("a", false),
		notif("b", true),
		notif("c", false),
	})

	assert.Equal(2, inbox.MarkAllRead())
	assert.Equal(0, inbox.Unread())
	for _, n := range inbox.Items() {
		assert.True(n.Read)
	}

	// Second pass flips nothing.
	assert.Equal(0, inbox.MarkAllRead())
	assert.Equal(0, inbox.Unread())
}

func TestInboxDelete(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()
	inbox.Replace([]model.Notification{
		notif("a", false),
		notif("b", true),
	})

	// Deleting an unread notification decrements exactly once.
	deleted, wasUnread := inbox.Delete("a")
	assert.True(deleted)
	assert.True(wasUnread)
	assert.Equal(0, inbox.Unread())
	assert.Equal(1, inbox.Len())

	// Deleting the same id again does nothing.
	deleted, wasUnread = inbox.Delete("a")
	assert.False(deleted)
	assert.False(wasUnread)
	assert.Equal(0, inbox.Unread())

	// Deleting a read notification leaves the count alone.
	deleted, wasUnread = inbox.Delete("b")
	assert.True(deleted)
	assert.False(wasUnread)
	assert.Equal(0, inbox.Unread())
	assert.Equal(0, inbox.Len())
}

func TestInboxUnreadAlwaysMatchesItems(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()

	countUnread := func() int {
		unread := 0
		for _, n := range inbox.Items() {
			if !n.Read {
				unread++
			}
		}
		return unread
	}

	inbox.Replace([]model.Notification{
		notif("a", false), notif("b", false), notif("c", true), notif("d", false),
	})
	assert.Equal(countUnread(), inbox.Unread())

	inbox.MarkRead("a")
	assert.Equal(countUnread(), inbox.Unread())

	inbox.Delete("b")
	assert.Equal(countUnread(), inbox.Unread())

	inbox.MarkRead("a")
	inbox.Delete("b")
	assert.Equal(countUnread(), inbox.Unread())

	inbox.MarkAllRead()
	assert.Equal(countUnread(), inbox.Unread())

	inbox.Replace([]model.Notification{notif("e", false)})
	assert.Equal(countUnread(), inbox.Unread())
}

func TestInboxItemsReturnsCopy(t *testing.T) {
	assert := assert.New(t)
	inbox := NewInbox()
	inbox.Replace([]model.Notification{notif("a", false)})

	items := inbox.Items()
	items[0].Read = true

	n, _ := inbox.Get("a")
	assert.False(n.Read)
}
