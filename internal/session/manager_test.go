package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/console/internal/api"
	"github.com/procurehq/console/internal/model"
)

// memoryTokens is an in-memory TokenStore.
type memoryTokens struct {
	token string
}

func (m *memoryTokens) LoadToken() (string, error) { return m.token, nil }
func (m *memoryTokens) SaveToken(t string) error   { m.token = t; return nil }
func (m *memoryTokens) ClearToken() error          { m.token = ""; return nil }

// fakeIdentity is an in-memory IdentityClient that records calls.
type fakeIdentity struct {
	token string
	user  *model.User

	loginToken string
	loginErr   error
	userErr    error
	logoutErr  error

	currentUserCalls int
	logoutCalls      int
}

func (f *fakeIdentity) SetToken(token string) { f.token = token }

func (f *fakeIdentity) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.token = f.loginToken
	return &api.LoginResponse{Token: f.loginToken, User: *f.user}, nil
}

func (f *fakeIdentity) Logout(ctx context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeIdentity) CurrentUser(ctx context.Context) (*model.User, error) {
	f.currentUserCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func testUser() *model.User {
	return &model.User{
		ID:    "u1",
		Email: "pat@corp.example.com",
		Name:  "Pat",
		Role:  model.RoleApprover,
	}
}

// signedToken builds a JWT with the given expiry for bootstrap tests.
// The manager never verifies signatures, so the key is arbitrary.
func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestBootstrapWithoutStoredToken(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{user: testUser()}
	m := NewManager(client, &memoryTokens{}, nil)

	sess := m.Bootstrap(context.Background())

	assert.Equal(StateAnonymous, sess.State)
	assert.False(sess.Authenticated())
	// No token means no network round trip.
	assert.Equal(0, client.currentUserCalls)
}

func TestBootstrapDiscardsExpiredToken(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{user: testUser()}
	tokens := &memoryTokens{token: signedToken(t, time.Now().Add(-time.Hour))}
	m := NewManager(client, tokens, nil)

	sess := m.Bootstrap(context.Background())

	assert.Equal(StateAnonymous, sess.State)
	// The stale token is forgotten without asking the backend.
	assert.Equal(0, client.currentUserCalls)
	assert.Empty(tokens.token)
}

func TestBootstrapConfirmsStoredToken(t *testing.T) {
	assert := assert.New(t)
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	client := &fakeIdentity{user: testUser()}
	tokens := &memoryTokens{token: signedToken(t, expiry)}
	m := NewManager(client, tokens, nil)

	sess := m.Bootstrap(context.Background())

	assert.True(sess.Authenticated())
	assert.Equal("pat@corp.example.com", sess.User.Email)
	assert.True(sess.Expiry.Equal(expiry))
	assert.Equal(1, client.currentUserCalls)
	// The token was installed on the client before the check.
	assert.Equal(tokens.token, client.token)
}

func TestBootstrapOpaqueTokenGoesToBackend(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{user: testUser()}
	tokens := &memoryTokens{token: "opaque-session-token"}
	m := NewManager(client, tokens, nil)

	sess := m.Bootstrap(context.Background())

	// No parsable expiry; the backend judges validity.
	assert.True(sess.Authenticated())
	assert.True(sess.Expiry.IsZero())
	assert.Equal(1, client.currentUserCalls)
}

func TestBootstrapFailedCheckIsAnonymous(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{
		user:    testUser(),
		userErr: &api.AuthError{Message: "token revoked"},
	}
	tokens := &memoryTokens{token: signedToken(t, time.Now().Add(time.Hour))}
	m := NewManager(client, tokens, nil)

	sess := m.Bootstrap(context.Background())

	assert.Equal(StateAnonymous, sess.State)
	assert.Nil(sess.User)

	// Network failures resolve the same way; there is no retry.
	client.userErr = errors.New("connection refused")
	sess = m.Bootstrap(context.Background())
	assert.Equal(StateAnonymous, sess.State)
}

func TestLoginPersistsToken(t *testing.T) {
	assert := assert.New(t)
	loginToken := signedToken(t, time.Now().Add(8*time.Hour))
	client := &fakeIdentity{user: testUser(), loginToken: loginToken}
	tokens := &memoryTokens{}
	m := NewManager(client, tokens, nil)

	sess, err := m.Login(context.Background(), "pat@corp.example.com", "hunter2")
	require.NoError(t, err)

	assert.True(sess.Authenticated())
	assert.Equal(loginToken, tokens.token)
	assert.False(sess.Expiry.IsZero())
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{
		user:     testUser(),
		loginErr: &api.AuthError{Message: "bad credentials"},
	}
	tokens := &memoryTokens{}
	m := NewManager(client, tokens, nil)

	sess, err := m.Login(context.Background(), "pat@corp.example.com", "wrong")

	assert.Error(err)
	assert.Equal(StateAnonymous, sess.State)
	assert.Empty(tokens.token)
}

func TestLogoutClearsSessionDespiteRemoteFailure(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{
		user:       testUser(),
		loginToken: signedToken(t, time.Now().Add(time.Hour)),
		logoutErr:  errors.New("backend down"),
	}
	tokens := &memoryTokens{}
	m := NewManager(client, tokens, nil)

	_, err := m.Login(context.Background(), "pat@corp.example.com", "hunter2")
	require.NoError(t, err)

	sess := m.Logout(context.Background())

	assert.Equal(StateAnonymous, sess.State)
	assert.Empty(tokens.token)
	assert.Empty(client.token)
	assert.Equal(1, client.logoutCalls)
}

func TestSnapshotReflectsState(t *testing.T) {
	assert := assert.New(t)
	client := &fakeIdentity{user: testUser(), loginToken: "tok"}
	m := NewManager(client, &memoryTokens{}, nil)

	assert.Equal(StatePending, m.Snapshot().State)

	_, err := m.Login(context.Background(), "pat@corp.example.com", "hunter2")
	require.NoError(t, err)
	assert.True(m.Snapshot().Authenticated())

	m.Logout(context.Background())
	assert.Equal(StateAnonymous, m.Snapshot().State)
}
