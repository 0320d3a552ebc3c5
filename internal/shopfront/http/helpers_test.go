package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chommo/shopfront/internal/shopfront/service"
	"github.com/chommo/shopfront/internal/shopfront/session"
	"github.com/chommo/shopfront/internal/shopfront/store/drivers/sqlite"
	"github.com/chommo/shopfront/pkg/platformsdk"
	"github.com/chommo/shopfront/pkg/slogx"
)

// fakePlatform scripts the marketplace API per endpoint path.
type fakePlatform struct {
	mux    *http.ServeMux
	server *httptest.Server
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()

	f := &fakePlatform{mux: http.NewServeMux()}
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakePlatform) respond(pattern string, status int, body any) {
	f.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	})
}

var testUser = platformsdk.User{
	ID:       7,
	Username: "linh",
	Email:    "linh@example.com",
	FullName: "Linh Tran",
	Balance:  500000,
}

// testServer is a fully wired storefront over an in-memory store and a
// scripted platform.
type testServer struct {
	platform *fakePlatform
	router   *Router
	server   *httptest.Server
	client   *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	f := newFakePlatform(t)
	f.respond("/api/shop/info.php", http.StatusOK, map[string]any{
		"success": true,
		"data":    platformsdk.Shop{ID: 42, Name: "Chommo"},
	})

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slogx.Discard()
	platform := platformsdk.NewClient(f.server.URL, "42")

	sessions := &session.Manager{
		Sessions:   st.Sessions(),
		SigningKey: []byte("test-signing-key-32-bytes-long!!"),
		TTL:        time.Hour,
	}

	auth := &service.Auth{
		Platform:      platform,
		Sessions:      st.Sessions(),
		PublicBaseURL: "https://shop.example.com",
		Logger:        logger,
	}

	router := NewRouter("test", st, sessions, logger)
	router.AuthService = auth
	router.CatalogService = service.NewCatalog(platform, logger, 5*time.Minute)
	router.CheckoutService = &service.Checkout{
		Platform:  platform,
		Sessions:  st.Sessions(),
		Auth:      auth,
		Subdomain: "chommo",
		Logger:    logger,
	}
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testServer{
		platform: f,
		router:   router,
		server:   server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (t *testServer) do(method, path string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	}

	req, _ := http.NewRequest(method, t.server.URL+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		panic(err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(buf)
}
