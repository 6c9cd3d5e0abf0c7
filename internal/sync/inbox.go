package sync

import (
	gosync "sync"

	"github.com/procurehq/console/internal/model"
)

// Inbox is the in-memory mirror of the server's notification list.
// The unread counter always equals the number of held notifications
// with Read == false; every mutation path keeps that derived value
// consistent.
type Inbox struct {
	mu     gosync.Mutex
	items  []model.Notification
	unread int
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Replace reconciles a full poll result into the inbox, replacing the
// held list wholesale. Returns the number of notifications whose ids
// were not present before the replace.
func (b *Inbox) Replace(notifications []model.Notification) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	known := make(map[string]bool, len(b.items))
	for _, n := range b.items {
		known[n.ID] = true
	}

	newCount := 0
	unread := 0
	items := make([]model.Notification, len(notifications))
	for i, n := range notifications {
		items[i] = n
		if !known[n.ID] {
			newCount++
		}
		if !n.Read {
			unread++
		}
	}

	b.items = items
	b.unread = unread
	return newCount
}

// Items returns a copy of the held notifications in server order.
func (b *Inbox) Items() []model.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := make([]model.Notification, len(b.items))
	copy(items, b.items)
	return items
}

// Get returns the notification with the given id.
func (b *Inbox) Get(id string) (model.Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.items {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// Len returns the number of held notifications.
func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Unread returns the current unread count.
func (b *Inbox) Unread() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unread
}

// MarkRead flips a single notification to read. Returns true if the
// notification existed and was unread; marking an already-read
// notification (or an unknown id) is a no-op.
func (b *Inbox) MarkRead(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID != id {
			continue
		}
		if b.items[i].Read {
			return false
		}
		b.items[i].Read = true
		b.unread--
		return true
	}
	return false
}

// MarkAllRead flips every unread notification to read. Returns the
// number of notifications that changed.
func (b *Inbox) MarkAllRead() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	flipped := 0
	for i := range b.items {
		if !b.items[i].Read {
			b.items[i].Read = true
			flipped++
		}
	}
	b.unread = 0
	return flipped
}

// Delete removes a notification by id. Deleting an unread notification
// decrements the unread count exactly once. Returns whether the id was
// held and whether it was unread.
func (b *Inbox) Delete(id string) (deleted, wasUnread bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID != id {
			continue
		}
		wasUnread = !b.items[i].Read
		b.items = append(b.items[:i], b.items[i+1:]...)
		if wasUnread {
			b.unread--
		}
		return true, wasUnread
	}
	return false, false
}
