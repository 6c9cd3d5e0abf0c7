package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/tests/testutil"
)

// fakeRemote is an in-memory Remote that records every call.
type fakeRemote struct {
	mu            gosync.Mutex
	notifications []model.Notification
	err           error

	fetches    int
	markedRead []string
	markedAll  int
	deleted    []string
	mutated    chan string
}

func newFakeRemote(notifications ...model.Notification) *fakeRemote {
	return &fakeRemote{
		notifications: notifications,
		mutated:       make(chan string, 16),
	}
}

func (f *fakeRemote) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out, nil
}

func (f *fakeRemote) MarkNotificationRead(ctx context.Context, id string) error {
	f.mu.Lock()
	f.markedRead = append(f.markedRead, id)
	f.mu.Unlock()
	f.mutated <- "read:" + id
	return nil
}

func (f *fakeRemote) MarkAllNotificationsRead(ctx context.Context) error {
	f.mu.Lock()
	f.markedAll++
	f.mu.Unlock()
	f.mutated <- "read-all"
	return nil
}

func (f *fakeRemote) DeleteNotification(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	f.mutated <- "delete:" + id
	return nil
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

// waitMutation blocks until the remote sees one mutation call.
func (f *fakeRemote) waitMutation(t *testing.T) string {
	t.Helper()
	select {
	case op := <-f.mutated:
		return op
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote mutation")
		return ""
	}
}

func TestPollerFirstFetchIsImmediate(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false), notif("b", true))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()

	cmd := p.Start()
	require.NotNil(t, cmd)

	msg, ok := cmd().(PollResultMsg)
	require.True(t, ok)

	assert.NoError(msg.Err)
	assert.Len(msg.Notifications, 2)
	assert.Equal(1, msg.Unread)
	assert.Equal(2, msg.NewCount)
	assert.Equal(1, remote.fetchCount())
}

func TestPollerNoFetchBeforeStart(t *testing.T) {
	remote := newFakeRemote()

	New(remote, nil, NewInbox(), nil, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, remote.fetchCount())
}

func TestPollerStopHaltsFetching(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false))

	p := New(remote, nil, NewInbox(), nil, 10*time.Millisecond)
	cmd := p.Start()
	cmd()

	// Let a few timer cycles land, then stop.
	time.Sleep(50 * time.Millisecond)
	p.Stop()
	assert.False(p.Running())

	// Let any in-flight cycle drain before snapshotting the count.
	time.Sleep(20 * time.Millisecond)
	observed := remote.fetchCount()
	assert.Greater(observed, 1)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(observed, remote.fetchCount())
}

func TestPollerIsSingleUse(t *testing.T) {
	remote := newFakeRemote()

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	require.NotNil(t, p.Start())
	p.Stop()

	// A stopped poller refuses to restart.
	assert.Nil(t, p.Start())
}

func TestPollerFailedFetchKeepsLocalState(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()

	msg := p.Start()().(PollResultMsg)
	assert.Equal(1, msg.Unread)

	remote.mu.Lock()
	remote.err = context.DeadlineExceeded
	remote.mu.Unlock()

	refreshed := pollAndWait(t, p)
	assert.Error(refreshed.Err)
	assert.False(refreshed.AuthExpired)

	// The inbox keeps the last good state through the failed cycle.
	assert.Equal(1, p.Inbox().Len())
	assert.Equal(1, p.Inbox().Unread())
}

func TestPollerReportsAuthExpiry(t *testing.T) {
	remote := newFakeRemote()
	remote.err = &api.AuthError{Message: "token expired"}

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()

	msg := p.Start()().(PollResultMsg)
	assert.Error(t, msg.Err)
	assert.True(t, msg.AuthExpired)
}

func TestPollerMarkReadIsOptimistic(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.Start()()

	// The local flip is visible before the remote call completes.
	cmd := p.MarkRead("a")
	assert.Equal(0, p.Inbox().Unread())

	msg := cmd().(UnreadChangedMsg)
	assert.Equal(0, msg.Unread)

	assert.Equal("read:a", remote.waitMutation(t))

	// Re-marking sends nothing to the remote.
	p.MarkRead("a")
	select {
	case op := <-remote.mutated:
		t.Fatalf("unexpected remote mutation %q", op)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerMarkAllRead(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false), notif("b", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.Start()()

	msg := p.MarkAllRead()().(UnreadChangedMsg)
	assert.Equal(0, msg.Unread)
	assert.Equal("read-all", remote.waitMutation(t))
}

func TestPollerDeleteUnreadDecrementsOnce(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false), notif("b", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.Start()()

	msg := p.Delete("a")().(UnreadChangedMsg)
	assert.Equal(1, msg.Unread)
	assert.Equal(1, p.Inbox().Len())
	assert.Equal("delete:a", remote.waitMutation(t))

	// Deleting again is a pure no-op.
	msg = p.Delete("a")().(UnreadChangedMsg)
	assert.Equal(1, msg.Unread)
}

func TestPollerMailNotificationsStayLocal(t *testing.T) {
	remote := newFakeRemote(notif("mail:42", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.Start()()

	p.MarkRead("mail:42")
	assert.Equal(t, 0, p.Inbox().Unread())

	// Mail-derived records have no remote counterpart to mutate.
	select {
	case op := <-remote.mutated:
		t.Fatalf("unexpected remote mutation %q", op)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerMailReadStateSurvivesRefresh(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	// The mailbox re-reports the same unread message every cycle.
	p.SetIngestor(ingestorFunc(func(ctx context.Context) ([]model.Notification, error) {
		return []model.Notification{notif("mail:7", false)}, nil
	}))

	msg := p.Start()().(PollResultMsg)
	assert.Equal(2, msg.Unread)

	p.MarkRead("mail:7")
	assert.Equal(1, p.Inbox().Unread())

	refreshed := pollAndWait(t, p)
	assert.Equal(1, refreshed.Unread)
	assert.Equal(1, p.Inbox().Unread())
}

func TestPollerMailDeleteSurvivesRefresh(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.SetIngestor(ingestorFunc(func(ctx context.Context) ([]model.Notification, error) {
		return []model.Notification{notif("mail:7", false)}, nil
	}))
	p.Start()()

	p.Delete("mail:7")
	assert.Equal(1, p.Inbox().Len())

	refreshed := pollAndWait(t, p)
	require.Len(t, refreshed.Notifications, 1)
	assert.Equal("a", refreshed.Notifications[0].ID)
}

func TestPollerMarkAllReadCoversMailRecords(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote()

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.SetIngestor(ingestorFunc(func(ctx context.Context) ([]model.Notification, error) {
		return []model.Notification{notif("mail:7", false), notif("mail:8", false)}, nil
	}))

	msg := p.Start()().(PollResultMsg)
	assert.Equal(2, msg.Unread)

	p.MarkAllRead()
	assert.Equal(0, p.Inbox().Unread())

	refreshed := pollAndWait(t, p)
	assert.Equal(0, refreshed.Unread)
}

func TestPollerMergesIngestedNotifications(t *testing.T) {
	assert := assert.New(t)
	remote := newFakeRemote(notif("a", false))

	p := New(remote, nil, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.SetIngestor(ingestorFunc(func(ctx context.Context) ([]model.Notification, error) {
		return []model.Notification{notif("mail:7", false), notif("a", false)}, nil
	}))

	msg := p.Start()().(PollResultMsg)
	assert.Len(msg.Notifications, 2)
	assert.Equal(2, msg.Unread)
}

func TestPollerMirrorsToStore(t *testing.T) {
	assert := assert.New(t)
	mirror := testutil.NewTestStore(t)
	remote := newFakeRemote(notif("a", false), notif("b", true))

	p := New(remote, mirror, NewInbox(), nil, time.Hour)
	defer p.Stop()
	p.Start()()

	cached, err := mirror.Notifications(context.Background(), false)
	require.NoError(t, err)
	assert.Len(cached, 2)

	unread, err := mirror.UnreadNotificationCount(context.Background())
	require.NoError(t, err)
	assert.Equal(1, unread)
}

// ingestorFunc adapts a function to the Ingestor interface.
type ingestorFunc func(ctx context.Context) ([]model.Notification, error)

func (f ingestorFunc) Fetch(ctx context.Context) ([]model.Notification, error) {
	return f(ctx)
}

// pollAndWait triggers a refresh and blocks for its result.
func pollAndWait(t *testing.T, p *Poller) PollResultMsg {
	t.Helper()
	p.Refresh()
	msg, ok := p.WaitForNextResult()().(PollResultMsg)
	if !ok {
		t.Fatal("poller stopped before delivering a result")
	}
	return msg
}
