// Package sync keeps the local notification state approximately in
// step with the server: a fixed-interval poller replaces the inbox
// wholesale, and mutations are applied optimistically with
// fire-and-forget remote calls.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/store"
)

// fetchTimeout is the maximum time allowed for a single poll cycle.
const fetchTimeout = 30 * time.Second

// mutateTimeout bounds the fire-and-forget remote mutation calls.
const mutateTimeout = 10 * time.Second

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 30 * time.Second

// Remote is the slice of the API client the poller consumes.
type Remote interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// Ingestor is an optional secondary notification source folded into
// each poll cycle (e.g., the IMAP mailbox).
type Ingestor interface {
	Fetch(ctx context.Context) ([]model.Notification, error)
}

// PollResultMsg is a tea.Msg sent when a poll cycle completes.
type PollResultMsg struct {
	Notifications []model.Notification
	Unread        int
	NewCount      int
	Err           error

	// AuthExpired is set when the backend rejected the session; the
	// app should drop to the login view.
	AuthExpired bool
}

// UnreadChangedMsg is a tea.Msg sent after an optimistic mutation so
// views can refresh their unread badge without waiting for a poll.
type UnreadChangedMsg struct {
	Unread int
}

// Poller drives the fixed-interval notification re-fetch loop. It must
// only run while a session exists: the app starts it after
// authentication and stops it on logout. A Poller is single-use;
// construct a fresh one for each session.
type Poller struct {
	remote   Remote
	ingest   Ingestor
	store    store.Store
	inbox    *Inbox
	logger   *zap.Logger
	interval time.Duration

	resultCh  chan PollResultMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu      gosync.Mutex
	running bool
	stopped bool

	// Local-only ("mail:") records are re-ingested from the mailbox
	// every cycle with their original flags, so their read and delete
	// flips must be remembered and re-applied after each Replace.
	localMu      gosync.Mutex
	localRead    map[string]bool
	localDeleted map[string]bool
}

// New creates a poller over the given remote. The mirror store and the
// ingestor may be nil; interval <= 0 falls back to DefaultInterval.
func New(
	remote Remote,
	mirror store.Store,
	inbox *Inbox,
	logger *zap.Logger,
	interval time.Duration,
) *Poller {
	if inbox == nil {
		inbox = NewInbox()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		remote:       remote,
		store:        mirror,
		inbox:        inbox,
		logger:       logger,
		interval:     interval,
		resultCh:     make(chan PollResultMsg, 16),
		triggerCh:    make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		localRead:    make(map[string]bool),
		localDeleted: make(map[string]bool),
	}
}

// SetIngestor registers a secondary notification source. Must be
// called before Start.
func (p *Poller) SetIngestor(ing Ingestor) {
	p.ingest = ing
}

// Inbox returns the inbox the poller reconciles into.
func (p *Poller) Inbox() *Inbox {
	return p.inbox
}

// Start launches the polling goroutine and returns a subscription
// command that delivers PollResultMsg messages to the Bubble Tea
// runtime. The first fetch happens immediately.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine. No fetches are observed after Stop
// returns; the in-flight cycle, if any, is abandoned at its timeout.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
	p.stopped = true
}

// Running reports whether the polling goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Refresh triggers an immediate re-fetch without waiting for the timer.
func (p *Poller) Refresh() tea.Cmd {
	select {
	case p.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued.
	}
	return nil
}

// loop runs the fixed-interval fetch cycle until Stop.
func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial fetch immediately on start.
	p.pollOnce()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.pollOnce()
		case <-p.triggerCh:
			p.pollOnce()
		}
	}
}

// pollOnce performs a single fetch, reconciles the inbox, mirrors the
// result to the local store, and reports on the result channel. A
// failed fetch skips the cycle; local state is left as it was.
func (p *Poller) pollOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	notifications, err := p.remote.ListNotifications(ctx)
	if err != nil {
		p.logger.Warn("notification poll failed; skipping cycle", zap.Error(err))
		p.sendResult(PollResultMsg{
			Err:         err,
			Unread:      p.inbox.Unread(),
			AuthExpired: api.IsAuthError(err),
		})
		return
	}

	if p.ingest != nil {
		mailed, err := p.ingest.Fetch(ctx)
		if err != nil {
			// Mail ingest is best-effort; the REST result still lands.
			p.logger.Warn("mailbox ingest failed", zap.Error(err))
		} else {
			notifications = mergeNotifications(notifications, mailed)
		}
	}

	notifications = p.applyLocalState(notifications)

	newCount := p.inbox.Replace(notifications)
	p.mirror(ctx)

	p.logger.Debug("poll cycle complete",
		zap.Int("total", len(notifications)),
		zap.Int("new", newCount),
		zap.Int("unread", p.inbox.Unread()))

	p.sendResult(PollResultMsg{
		Notifications: p.inbox.Items(),
		Unread:        p.inbox.Unread(),
		NewCount:      newCount,
	})
}

// MarkRead optimistically marks one notification read. The local flip
// and unread decrement happen immediately; the remote call is
// fire-and-forget and a failure is logged, not rolled back. Marking an
// already-read notification is a no-op.
func (p *Poller) MarkRead(id string) tea.Cmd {
	flipped := p.inbox.MarkRead(id)
	if flipped {
		p.rememberLocalRead(id)
		p.mirrorAsync()
		if !localOnlyID(id) {
			go p.fireAndForget("mark read", id, p.remote.MarkNotificationRead)
		}
	}

	unread := p.inbox.Unread()
	return func() tea.Msg {
		return UnreadChangedMsg{Unread: unread}
	}
}

// MarkAllRead optimistically marks every notification read.
func (p *Poller) MarkAllRead() tea.Cmd {
	flipped := p.inbox.MarkAllRead()
	if flipped > 0 {
		for _, n := range p.inbox.Items() {
			p.rememberLocalRead(n.ID)
		}
		p.mirrorAsync()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
			defer cancel()
			if err := p.remote.MarkAllNotificationsRead(ctx); err != nil {
				p.logger.Warn("mark all read failed", zap.Error(err))
			}
		}()
	}

	unread := p.inbox.Unread()
	return func() tea.Msg {
		return UnreadChangedMsg{Unread: unread}
	}
}

// Delete optimistically removes one notification. An unread delete
// decrements the count exactly once.
func (p *Poller) Delete(id string) tea.Cmd {
	deleted, _ := p.inbox.Delete(id)
	if deleted {
		p.rememberLocalDelete(id)
		p.mirrorAsync()
		if !localOnlyID(id) {
			go p.fireAndForget("delete", id, p.remote.DeleteNotification)
		}
	}

	unread := p.inbox.Unread()
	return func() tea.Msg {
		return UnreadChangedMsg{Unread: unread}
	}
}

// fireAndForget runs a single remote mutation with its own deadline.
func (p *Poller) fireAndForget(
	op string,
	id string,
	call func(ctx context.Context, id string) error,
) {
	ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
	defer cancel()

	if err := call(ctx, id); err != nil {
		p.logger.Warn("notification mutation failed",
			zap.String("op", op),
			zap.String("id", id),
			zap.Error(err))
	}
}

// mirror writes the current inbox to the local store.
func (p *Poller) mirror(ctx context.Context) {
	if p.store == nil {
		return
	}
	if err := p.store.ReplaceNotifications(ctx, p.inbox.Items()); err != nil {
		p.logger.Warn("mirroring notifications to cache failed", zap.Error(err))
	}
}

// mirrorAsync mirrors the inbox without blocking the UI loop.
func (p *Poller) mirrorAsync() {
	if p.store == nil {
		return
	}
	items := p.inbox.Items()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()
		if err := p.store.ReplaceNotifications(ctx, items); err != nil {
			p.logger.Warn("mirroring notifications to cache failed", zap.Error(err))
		}
	}()
}

// sendResult sends a PollResultMsg without blocking the poll loop.
func (p *Poller) sendResult(msg PollResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the poller.
	}
}

// waitForResult returns a tea.Cmd that waits for the next poll result.
func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case result, ok := <-p.resultCh:
			if !ok {
				return nil
			}
			return result
		case <-p.stopCh:
			return nil
		}
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll
// result. Call this after processing a PollResultMsg to keep the
// subscription alive.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

// rememberLocalRead records a read flip for a local-only record. The
// backend remembers flips on its own records; server ids are skipped.
func (p *Poller) rememberLocalRead(id string) {
	if !localOnlyID(id) {
		return
	}
	p.localMu.Lock()
	p.localRead[id] = true
	p.localMu.Unlock()
}

// rememberLocalDelete records a delete of a local-only record.
func (p *Poller) rememberLocalDelete(id string) {
	if !localOnlyID(id) {
		return
	}
	p.localMu.Lock()
	p.localDeleted[id] = true
	p.localMu.Unlock()
}

// applyLocalState re-applies remembered read and delete flips to a
// fresh snapshot, so a mail-derived notification marked read or
// deleted does not resurrect when the mailbox reports it again.
func (p *Poller) applyLocalState(notifications []model.Notification) []model.Notification {
	p.localMu.Lock()
	defer p.localMu.Unlock()

	if len(p.localRead) == 0 && len(p.localDeleted) == 0 {
		return notifications
	}

	out := notifications[:0]
	for _, n := range notifications {
		if p.localDeleted[n.ID] {
			continue
		}
		if p.localRead[n.ID] {
			n.Read = true
		}
		out = append(out, n)
	}
	return out
}

// localOnlyID reports whether a notification exists only on this
// client (mail-ingested records carry a "mail:" id prefix) and so has
// no remote counterpart to mutate.
func localOnlyID(id string) bool {
	return len(id) > 5 && id[:5] == "mail:"
}

// mergeNotifications appends secondary-source records whose ids are
// not already present in the primary list.
func mergeNotifications(primary, secondary []model.Notification) []model.Notification {
	if len(secondary) == 0 {
		return primary
	}

	seen := make(map[string]bool, len(primary))
	for _, n := range primary {
		seen[n.ID] = true
	}

	merged := primary
	for _, n := range secondary {
		if !seen[n.ID] {
			merged = append(merged, n)
		}
	}
	return merged
}
