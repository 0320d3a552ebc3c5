package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/internal/shopfront/store/drivers/sqlite"
	"github.com/chommo/shopfront/pkg/idx"
	"github.com/chommo/shopfront/pkg/platformsdk"
	"github.com/chommo/shopfront/pkg/slogx"
)

// fakePlatform is a scripted stand-in for the marketplace API. Handlers are
// registered per endpoint path; requests counts every call so tests can
// assert that precondition failures never reach the network.
type fakePlatform struct {
	mux      *http.ServeMux
	server   *httptest.Server
	requests int
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	f := &fakePlatform{mux: http.NewServeMux()}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePlatform) client() *platformsdk.Client {
	return platformsdk.NewClient(f.server.URL, "42")
}

func (f *fakePlatform) respond(pattern string, status int, body any) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

func newTestSessions(t *testing.T) store.Sessions {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s.Sessions()
}

// newTestSession creates and returns a persisted blank session.
func newTestSession(t *testing.T, sessions store.Sessions) domain.Session {
	t.Helper()

	sess := domain.Session{ID: idx.New().String()}
	require.NoError(t, sessions.CreateSession(context.Background(), sess))

	stored, err := sessions.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	return stored
}

func newTestAuth(t *testing.T, f *fakePlatform, sessions store.Sessions) *Auth {
	t.Helper()

	return &Auth{
		Platform:      f.client(),
		Sessions:      sessions,
		PublicBaseURL: "https://shop.example.com",
		Logger:        slogx.Discard(),
	}
}

var testUser = platformsdk.User{
	ID:       7,
	Username: "linh",
	Email:    "linh@example.com",
	FullName: "Linh Tran",
	Balance:  500000,
}
