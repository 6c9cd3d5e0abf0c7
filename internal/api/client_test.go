package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/console/internal/model"
)

func TestClientSendsBearerToken(t *testing.T) {
	assert := assert.New(t)

	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		json.NewEncoder(w).Encode(model.User{ID: "u1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok-123")
	_, err := client.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Equal("Bearer tok-123", gotAuth)
	assert.Equal("application/json", gotAccept)
}

func TestClientOmitsAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Department{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.ListDepartments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientUnauthorizedBecomesAuthError(t *testing.T) {
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "stale")
	_, err := client.CurrentUser(context.Background())

	require.Error(t, err)
	assert.True(IsAuthError(err))
}

func TestClientDecodesAPIError(t *testing.T) {
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "invalid_transition",
			"message": "request is not in a submittable state",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	_, err := client.SubmitRequest(context.Background(), "r1")

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(http.StatusConflict, apiErr.StatusCode)
	assert.Equal("invalid_transition", apiErr.Code)
	assert.Contains(apiErr.Message, "not in a submittable state")
	assert.False(IsAuthError(err))
}

func TestClientRetriesOnRateLimit(t *testing.T) {
	assert := assert.New(t)

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]model.Notification{{ID: "n1"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	notifications, err := client.ListNotifications(context.Background())

	require.NoError(t, err)
	assert.Len(notifications, 1)
	assert.Equal(int32(3), atomic.LoadInt32(&calls))
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	_, err := client.ListNotifications(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
	// Initial attempt plus three retries.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestClientHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Retry-After header forces the exponential backoff path.
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, "tok")
	_, err := client.ListNotifications(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoginInstallsToken(t *testing.T) {
	assert := assert.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var payload LoginRequest
			json.NewDecoder(r.Body).Decode(&payload)
			assert.Equal("pat@corp.example.com", payload.Email)
			json.NewEncoder(w).Encode(LoginResponse{
				Token: "fresh-token",
				User:  model.User{ID: "u1", Email: payload.Email},
			})
		case "/auth/me":
			assert.Equal("Bearer fresh-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(model.User{ID: "u1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	resp, err := client.Login(context.Background(), "pat@corp.example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal("fresh-token", resp.Token)

	// Subsequent calls carry the fresh token.
	_, err = client.CurrentUser(context.Background())
	require.NoError(t, err)
}

func TestLoginValidatesCredentialsLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid payload must not reach the backend")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.Login(context.Background(), "not-an-email", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestNotificationMutationRoutes(t *testing.T) {
	assert := assert.New(t)

	type call struct{ method, path string }
	var calls []call
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, call{r.Method, r.URL.Path})
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	ctx := context.Background()

	require.NoError(t, client.MarkNotificationRead(ctx, "n1"))
	require.NoError(t, client.MarkAllNotificationsRead(ctx))
	require.NoError(t, client.DeleteNotification(ctx, "n2"))

	assert.Equal([]call{
		{http.MethodPut, "/notifications/n1/read"},
		{http.MethodPut, "/notifications/read-all"},
		{http.MethodDelete, "/notifications/n2"},
	}, calls)
}

func TestListRequestsBuildsQuery(t *testing.T) {
	assert := assert.New(t)

	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(RequestList{
			Items: []model.PurchaseRequest{{ID: "r1"}},
			Total: 1,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	page, err := client.ListRequests(context.Background(), RequestListOptions{
		Status:   model.RequestStatusSubmitted,
		Query:    "laptops",
		Page:     2,
		PageSize: 25,
	})

	require.NoError(t, err)
	assert.Len(page.Items, 1)
	assert.Contains(query, "status=submitted")
	assert.Contains(query, "q=laptops")
	assert.Contains(query, "page=2")
	assert.Contains(query, "page_size=25")
}

func TestCreateRequestRejectsInvalidDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid draft must not reach the backend")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok")
	_, err := client.CreateRequest(context.Background(), model.RequestDraft{
		Title:    "New laptops",
		Priority: 2,
		// Missing department, category, and items.
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}
