// Package session tracks who is logged in. The backend's identity
// service is the source of truth; the manager only mirrors its answer
// and remembers the bearer token between runs.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/model"
)

// State is the client's view of the authentication status.
type State int

const (
	// StatePending means the current-user check has not completed.
	// Protected views stay blocked while pending.
	StatePending State = iota

	// StateAuthenticated means the identity service confirmed a user.
	StateAuthenticated

	// StateAnonymous means there is no usable session. Any failed
	// check lands here; there is no retry.
	StateAnonymous
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// IdentityClient is the slice of the API client the manager needs.
type IdentityClient interface {
	SetToken(token string)
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*model.User, error)
}

// Session is a point-in-time snapshot of the authentication state.
type Session struct {
	State  State
	User   *model.User
	Expiry time.Time
}

// Authenticated reports whether a confirmed user is present.
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Manager owns the session state. All reads go through Snapshot so
// views never observe a half-updated session.
type Manager struct {
	client IdentityClient
	tokens TokenStore
	logger *zap.Logger

	mu     sync.Mutex
	state  State
	user   *model.User
	expiry time.Time
}

// NewManager creates a session manager in the Pending state.
func NewManager(client IdentityClient, tokens TokenStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		client: client,
		tokens: tokens,
		logger: logger,
		state:  StatePending,
	}
}

// Bootstrap restores the stored session, if any, and asks the identity
// service whether it is still valid. A token whose expiry is already
// in the past is discarded without a network call. Any error resolves
// to Anonymous; there is no retry policy.
func (m *Manager) Bootstrap(ctx context.Context) Session {
	token, err := m.tokens.LoadToken()
	if err != nil {
		m.logger.Warn("loading stored token", zap.Error(err))
	}
	if token == "" {
		return m.setAnonymous()
	}

	expiry, hasExpiry := tokenExpiry(token)
	if hasExpiry && expiry.Before(time.Now()) {
		m.logger.Info("stored session expired; discarding",
			zap.Time("expiry", expiry))
		if err := m.tokens.ClearToken(); err != nil {
			m.logger.Warn("clearing expired token", zap.Error(err))
		}
		return m.setAnonymous()
	}

	m.client.SetToken(token)

	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		// Treated as logged out regardless of the cause.
		m.logger.Info("current-user check failed", zap.Error(err))
		return m.setAnonymous()
	}

	return m.setAuthenticated(user, expiry)
}

// Login exchanges credentials for a session and persists the token.
func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return m.setAnonymous(), err
	}

	if err := m.tokens.SaveToken(resp.Token); err != nil {
		// A session that doesn't survive a restart is still a session.
		m.logger.Warn("persisting session token", zap.Error(err))
	}

	expiry, _ := tokenExpiry(resp.Token)
	user := resp.User
	m.logger.Info("logged in",
		zap.String("user", user.Email),
		zap.String("role", string(user.Role)))
	return m.setAuthenticated(&user, expiry), nil
}

// Logout clears the local session and tells the backend, best-effort.
// The local state is Anonymous when this returns even if the remote
// call failed.
func (m *Manager) Logout(ctx context.Context) Session {
	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed", zap.Error(err))
	}

	if err := m.tokens.ClearToken(); err != nil {
		m.logger.Warn("clearing stored token", zap.Error(err))
	}
	m.client.SetToken("")

	m.logger.Info("logged out")
	return m.setAnonymous()
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Session{State: m.state, User: m.user, Expiry: m.expiry}
}

func (m *Manager) setAuthenticated(user *model.User, expiry time.Time) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAuthenticated
	m.user = user
	m.expiry = expiry
	return Session{State: m.state, User: m.user, Expiry: m.expiry}
}

func (m *Manager) setAnonymous() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateAnonymous
	m.user = nil
	m.expiry = time.Time{}
	return Session{State: m.state}
}
