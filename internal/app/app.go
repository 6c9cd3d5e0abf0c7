// Package app wires the session manager, the notification poller, and
// the terminal views into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/credential"
	"github.com/procurehq/console/internal/keys"
	"github.com/procurehq/console/internal/mailbox"
	"github.com/procurehq/console/internal/model"
	"github.com/procurehq/console/internal/session"
	"github.com/procurehq/console/internal/store"
	appsync "github.com/procurehq/console/internal/sync"
	"github.com/procurehq/console/internal/ui"
	helpview "github.com/procurehq/console/internal/ui/help"
	inboxview "github.com/procurehq/console/internal/ui/inbox"
	loginview "github.com/procurehq/console/internal/ui/login"
	ordersview "github.com/procurehq/console/internal/ui/orders"
	requestsview "github.com/procurehq/console/internal/ui/requests"
)

// sessionTimeout bounds the bootstrap, login, and logout round trips.
const sessionTimeout = 15 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewInbox ViewState = iota
	ViewRequests
	ViewOrders
	ViewHelp
)

// bootstrapDoneMsg carries the result of the stored-session check.
type bootstrapDoneMsg struct {
	session session.Session
}

// loginDoneMsg carries the result of a credential exchange.
type loginDoneMsg struct {
	session session.Session
	err     error
}

// loggedOutMsg signals that the session has been torn down.
type loggedOutMsg struct{}

// Model is the root Bubble Tea model that manages the session gate,
// the poller lifecycle, and view routing.
type Model struct {
	client   *api.Client
	sessions *session.Manager
	cache    store.Store
	cfg      *model.AppConfig
	logger   *zap.Logger
	keys     *keys.KeyMap
	layout   ui.Layout

	currentView  ViewState
	previousView ViewState

	session session.Session
	poller  *appsync.Poller
	unread  int

	loginView    loginview.Model
	inboxView    inboxview.Model
	requestsView requestsview.Model
	ordersView   ordersview.Model
	helpView     helpview.Model

	ready      bool
	statusText string
}

// New creates the root application model.
func New(
	client *api.Client,
	sessions *session.Manager,
	cache store.Store,
	cfg *model.AppConfig,
	logger *zap.Logger,
) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	k := keys.DefaultKeyMap()

	return Model{
		client:       client,
		sessions:     sessions,
		cache:        cache,
		cfg:          cfg,
		logger:       logger,
		keys:         k,
		currentView:  ViewInbox,
		loginView:    loginview.New(80, 24),
		inboxView:    inboxview.New(k, 80, 24),
		requestsView: requestsview.New(client, cache, logger, k, 80, 24),
		ordersView:   ordersview.New(client, cache, logger, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
	}
}

// Init kicks off the stored-session check. Until it resolves, the app
// stays in the pending state and no polling happens.
func (m Model) Init() tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		return bootstrapDoneMsg{session: sessions.Bootstrap(ctx)}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.inboxView.SetSize(contentWidth, contentHeight)
		m.requestsView.SetSize(contentWidth, contentHeight)
		m.ordersView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to the login form so huh can lay itself out.
		return m.updateActiveView(msg)

	case bootstrapDoneMsg:
		m.session = msg.session
		if m.session.Authenticated() {
			cmd := m.enterSession()
			return m, cmd
		}
		cmd := m.loginView.Start("")
		return m, cmd

	case loginview.SubmitMsg:
		return m, m.login(msg.Email, msg.Password)

	case loginDoneMsg:
		m.session = msg.session
		if msg.err != nil {
			cmd := m.loginView.Start(loginErrorText(msg.err))
			return m, cmd
		}
		cmd := m.enterSession()
		return m, cmd

	case loggedOutMsg:
		cmd := m.loginView.Start("")
		return m, cmd

	case appsync.PollResultMsg:
		if msg.AuthExpired {
			// The backend no longer honors the session; drop to login.
			cmd := m.expireSession()
			return m, cmd
		}
		m.unread = msg.Unread
		cmds := []tea.Cmd{m.poller.WaitForNextResult()}
		if msg.Err == nil {
			var cmd tea.Cmd
			m.inboxView, cmd = m.inboxView.Update(inboxview.NotificationsMsg{
				Notifications: msg.Notifications,
			})
			cmds = append(cmds, cmd)
			m.statusText = ""
		} else {
			m.statusText = "sync failed; retrying on the next cycle"
		}
		return m, tea.Batch(cmds...)

	case appsync.UnreadChangedMsg:
		m.unread = msg.Unread
		return m, nil

	case inboxview.NotificationsMsg:
		var cmd tea.Cmd
		m.inboxView, cmd = m.inboxView.Update(msg)
		return m, cmd

	case requestsview.LoadedMsg, requestsview.ActionDoneMsg:
		var cmd tea.Cmd
		m.requestsView, cmd = m.requestsView.Update(msg)
		return m, cmd

	case ordersview.LoadedMsg:
		var cmd tea.Cmd
		m.ordersView, cmd = m.ordersView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
		return m.updateActiveView(msg)
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that apply regardless of the active
// view. Returns handled=false when the key should go to the view.
func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.stopPoller()
		return tea.Quit, true
	}

	// Everything else is session-gated; the login form owns the keys
	// while anonymous.
	if !m.session.Authenticated() {
		return nil, false
	}

	// A live list filter owns the keyboard: "q" or "L" typed into a
	// filter must reach the filter input, not quit or sign out.
	if m.activeViewFiltering() {
		return nil, false
	}

	switch msg.String() {
	case "q":
		m.stopPoller()
		return tea.Quit, true
	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
		} else {
			m.previousView = m.currentView
			m.currentView = ViewHelp
		}
		return nil, true
	case "1":
		m.currentView = ViewInbox
		return nil, true
	case "2":
		m.currentView = ViewRequests
		return m.requestsView.Load(), true
	case "3":
		m.currentView = ViewOrders
		return m.ordersView.Load(), true
	case "L":
		return m.logout(), true
	}

	return nil, false
}

// activeViewFiltering reports whether the showing view has a filter
// input open. The inbox keeps filtering disabled, so only the request
// and order lists can capture keys this way.
func (m Model) activeViewFiltering() bool {
	switch m.currentView {
	case ViewRequests:
		return m.requestsView.Filtering()
	case ViewOrders:
		return m.ordersView.Filtering()
	}
	return false
}

// updateActiveView forwards a message to whichever view is showing.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.session.Authenticated() {
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewInbox:
		m.inboxView, cmd = m.inboxView.Update(msg)
	case ViewRequests:
		m.requestsView, cmd = m.requestsView.Update(msg)
	case ViewOrders:
		m.ordersView, cmd = m.ordersView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}
	return m, cmd
}

// enterSession starts the per-session machinery: a fresh poller (with
// the mail ingest when configured), the request and order loads, and
// the role wiring.
func (m *Model) enterSession() tea.Cmd {
	m.requestsView.SetUser(m.session.User)

	interval := time.Duration(m.cfg.Server.PollIntervalSec) * time.Second
	m.poller = appsync.New(
		m.client, m.cache, appsync.NewInbox(), m.logger, interval,
	)
	if m.cfg.Mailbox.Enabled {
		password, err := credential.Get(credential.MailboxPasswordKey)
		if err != nil {
			m.logger.Warn("mailbox password unavailable; ingest disabled",
				zap.Error(err))
		} else {
			m.poller.SetIngestor(
				mailbox.NewIngest(m.cfg.Mailbox, password, m.logger),
			)
		}
	}
	m.inboxView.SetPoller(m.poller)

	m.currentView = ViewInbox
	m.statusText = ""

	return tea.Batch(
		m.poller.Start(),
		m.requestsView.Load(),
		m.ordersView.Load(),
	)
}

// stopPoller halts polling. Safe to call with no active poller.
func (m *Model) stopPoller() {
	if m.poller != nil {
		m.poller.Stop()
	}
}

// login exchanges credentials for a session off the UI loop.
func (m Model) login(email, password string) tea.Cmd {
	sessions := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		sess, err := sessions.Login(ctx, email, password)
		return loginDoneMsg{session: sess, err: err}
	}
}

// logout stops polling immediately, then clears the session.
func (m *Model) logout() tea.Cmd {
	m.stopPoller()
	m.poller = nil
	m.unread = 0
	m.session = session.Session{State: session.StateAnonymous}

	sessions := m.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sessionTimeout)
		defer cancel()
		sessions.Logout(ctx)
		return loggedOutMsg{}
	}
}

// expireSession handles the backend rejecting the bearer token mid-run.
func (m *Model) expireSession() tea.Cmd {
	m.stopPoller()
	m.poller = nil
	m.unread = 0
	m.session = session.Session{State: session.StateAnonymous}
	return m.loginView.Start("Session expired. Sign in again.")
}

// View renders the full terminal frame.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	header := m.layout.RenderHeader("procure", m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.unread)

	var content string
	switch m.session.State {
	case session.StatePending:
		content = "\n  Checking stored session..."
	case session.StateAnonymous:
		content = m.loginView.View()
	default:
		switch m.currentView {
		case ViewInbox:
			content = m.inboxView.View()
		case ViewRequests:
			content = m.requestsView.View()
		case ViewOrders:
			content = m.ordersView.View()
		case ViewHelp:
			content = m.helpView.View()
		}
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// headerStatus renders the right-hand side of the header bar.
func (m Model) headerStatus() string {
	switch m.session.State {
	case session.StatePending:
		return "connecting"
	case session.StateAnonymous:
		return "signed out"
	default:
		return fmt.Sprintf("%s (%s)", m.session.User.Email, m.session.User.Role)
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusText != "" {
		return m.statusText
	}

	switch m.session.State {
	case session.StatePending:
		return "please wait"
	case session.StateAnonymous:
		return "enter submit | ctrl+c quit"
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help"
	case ViewRequests:
		return "enter open | s submit | a approve | X reject | r refresh | ? help"
	case ViewOrders:
		return "/ filter | r refresh | ? help"
	default:
		return "enter open | m read | M all read | x delete | r refresh | ? help"
	}
}

// loginErrorText maps a login failure to the line shown above the form.
func loginErrorText(err error) string {
	if api.IsAuthError(err) {
		return "Invalid email or password."
	}
	return "Login failed: " + err.Error()
}
