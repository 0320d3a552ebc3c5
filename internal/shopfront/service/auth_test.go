package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/pkg/platformsdk"
)

func TestInitiateLogin(t *testing.T) {
	f := newFakePlatform(t)
	sessions := newTestSessions(t)
	auth := newTestAuth(t, f, sessions)
	ctx := context.Background()

	sess := newTestSession(t, sessions)
	authorizeURL, err := auth.InitiateLogin(ctx, &sess, "/products/3")
	require.NoError(t, err)

	parsed, err := url.Parse(authorizeURL)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(parsed.Path, "/auth/authorize"))

	q := parsed.Query()
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "42", q.Get("client_id"))
	require.Equal(t, "https://shop.example.com/auth/callback", q.Get("redirect_uri"))
	require.Equal(t, platformsdk.LoginScopes, q.Get("scope"))
	require.NotEmpty(t, q.Get("state"))

	// The state in the URL is the one written durably before returning.
	stored, err := sessions.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, q.Get("state"), stored.OAuthState)
	require.Equal(t, "/products/3", stored.PreLoginURL)

	// No platform call happens during initiation; it is a pure redirect.
	require.Zero(t, f.requests)

	t.Run("fresh state per attempt", func(t *testing.T) {
		secondURL, err := auth.InitiateLogin(ctx, &sess, "/products/3")
		require.NoError(t, err)

		second, err := url.Parse(secondURL)
		require.NoError(t, err)
		require.NotEqual(t, q.Get("state"), second.Query().Get("state"))
	})
}

func TestHandleCallbackSuccess(t *testing.T) {
	f := newFakePlatform(t)
	f.respond("/api/auth/oauth-callback.php", http.StatusOK, map[string]any{
		"success": true,
		"user":    testUser,
		"token":   "fresh-bearer",
	})

	sessions := newTestSessions(t)
	auth := newTestAuth(t, f, sessions)
	ctx := context.Background()

	sess := newTestSession(t, sessions)
	_, err := auth.InitiateLogin(ctx, &sess, "/checkout")
	require.NoError(t, err)

	returnTo, err := auth.HandleCallback(ctx, &sess, "auth-code", sess.OAuthState, "")
	require.NoError(t, err)
	require.Equal(t, "/checkout", returnTo)
	require.True(t, sess.LoggedIn())
	require.Equal(t, "fresh-bearer", sess.Token)
	require.Equal(t, "linh", sess.User.Username)

	stored, err := sessions.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, "fresh-bearer", stored.Token)
	require.NotNil(t, stored.User)
	require.Empty(t, stored.OAuthState)
	require.Empty(t, stored.PreLoginURL)

	t.Run("replay is rejected", func(t *testing.T) {
		before := f.requests
		_, err := auth.HandleCallback(ctx, &sess, "auth-code", "whatever", "")
		require.ErrorIs(t, err, ErrNoPendingLogin)
		require.Equal(t, before, f.requests)
	})
}

func TestHandleCallbackDefaultsReturnURL(t *testing.T) {
	f := newFakePlatform(t)
	f.respond("/api/auth/oauth-callback.php", http.StatusOK, map[string]any{
		"success": true,
		"user":    testUser,
		"token":   "fresh-bearer",
	})

	sessions := newTestSessions(t)
	auth := newTestAuth(t, f, sessions)
	ctx := context.Background()

	sess := newTestSession(t, sessions)
	_, err := auth.InitiateLogin(ctx, &sess, "")
	require.NoError(t, err)

	returnTo, err := auth.HandleCallback(ctx, &sess, "auth-code", sess.OAuthState, "")
	require.NoError(t, err)
	require.Equal(t, "/", returnTo)
}

func TestHandleCallbackErrors(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakePlatform, *Auth, domain.Session) {
		f := newFakePlatform(t)
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		_, err := auth.InitiateLogin(ctx, &sess, "/somewhere")
		require.NoError(t, err)
		return f, auth, sess
	}

	t.Run("no pending handshake", func(t *testing.T) {
		f := newFakePlatform(t)
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		_, err := auth.HandleCallback(ctx, &sess, "code", "state", "")
		require.ErrorIs(t, err, ErrNoPendingLogin)
	})

	t.Run("platform denial", func(t *testing.T) {
		f, auth, sess := setup(t)

		_, err := auth.HandleCallback(ctx, &sess, "", "", "access_denied")
		var denied *PlatformDeniedError
		require.ErrorAs(t, err, &denied)
		require.Equal(t, "access_denied", denied.Reason)
		require.Zero(t, f.requests)
		require.Empty(t, sess.OAuthState)
	})

	t.Run("missing code", func(t *testing.T) {
		f, auth, sess := setup(t)

		_, err := auth.HandleCallback(ctx, &sess, "", sess.OAuthState, "")
		require.ErrorIs(t, err, ErrCallbackIncomplete)
		require.Zero(t, f.requests)
	})

	t.Run("state mismatch", func(t *testing.T) {
		f, auth, sess := setup(t)
		expected := sess.OAuthState

		_, err := auth.HandleCallback(ctx, &sess, "auth-code", "forged-state", "")
		var mismatch *StateMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Equal(t, "forged-state", mismatch.Received)
		require.Equal(t, expected, mismatch.Expected)

		// No exchange happened and no identity was installed.
		require.Zero(t, f.requests)
		require.False(t, sess.LoggedIn())
	})

	t.Run("state comparison is exact", func(t *testing.T) {
		f, auth, sess := setup(t)

		// A percent-encoded rendition of the right state must not pass.
		encoded := url.QueryEscape(sess.OAuthState + "=")
		_, err := auth.HandleCallback(ctx, &sess, "auth-code", encoded, "")
		var mismatch *StateMismatchError
		require.ErrorAs(t, err, &mismatch)
		require.Zero(t, f.requests)
	})

	t.Run("exchange rejected", func(t *testing.T) {
		f, auth, sess := setup(t)
		f.respond("/api/auth/oauth-callback.php", http.StatusOK, map[string]any{
			"success": false,
			"error":   "code expired",
		})

		_, err := auth.HandleCallback(ctx, &sess, "stale-code", sess.OAuthState, "")
		var perr *platformsdk.Error
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "code expired", perr.Message)
		require.False(t, sess.LoggedIn())
	})

	t.Run("state consumed on error outcomes", func(t *testing.T) {
		_, auth, sess := setup(t)

		_, err := auth.HandleCallback(ctx, &sess, "", sess.OAuthState, "")
		require.ErrorIs(t, err, ErrCallbackIncomplete)

		_, err = auth.HandleCallback(ctx, &sess, "code", "anything", "")
		require.ErrorIs(t, err, ErrNoPendingLogin)
	})
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("logged out", func(t *testing.T) {
		f := newFakePlatform(t)
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		user, err := auth.CurrentUser(ctx, &sess)
		require.NoError(t, err)
		require.Nil(t, user)
		require.Zero(t, f.requests)
	})

	t.Run("cached profile needs no network", func(t *testing.T) {
		f := newFakePlatform(t)
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		sess.InstallIdentity("bearer", testUser)
		require.NoError(t, sessions.SaveSession(ctx, sess))

		user, err := auth.CurrentUser(ctx, &sess)
		require.NoError(t, err)
		require.Equal(t, "linh", user.Username)
		require.Zero(t, f.requests)
	})

	t.Run("unverified token is verified once", func(t *testing.T) {
		f := newFakePlatform(t)
		f.respond("/api/auth/verify-token.php", http.StatusOK, map[string]any{
			"success": true,
			"user":    testUser,
		})
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		sess.Token = "bearer"
		require.NoError(t, sessions.SaveSession(ctx, sess))

		user, err := auth.CurrentUser(ctx, &sess)
		require.NoError(t, err)
		require.Equal(t, "linh", user.Username)
		require.Equal(t, 1, f.requests)

		// Second call serves the stored snapshot.
		_, err = auth.CurrentUser(ctx, &sess)
		require.NoError(t, err)
		require.Equal(t, 1, f.requests)
	})

	t.Run("rejected token logs the session out", func(t *testing.T) {
		f := newFakePlatform(t)
		f.respond("/api/auth/verify-token.php", http.StatusOK, map[string]any{
			"success": false,
			"error":   "token expired",
		})
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		sess.Token = "stale-bearer"
		require.NoError(t, sessions.SaveSession(ctx, sess))

		_, err := auth.CurrentUser(ctx, &sess)
		require.Error(t, err)
		require.False(t, sess.LoggedIn())

		stored, err := sessions.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		require.Empty(t, stored.Token)
		require.Nil(t, stored.User)
	})
}

func TestRefreshUser(t *testing.T) {
	ctx := context.Background()

	t.Run("no token is a no-op", func(t *testing.T) {
		f := newFakePlatform(t)
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		user, err := auth.RefreshUser(ctx, &sess)
		require.NoError(t, err)
		require.Nil(t, user)
		require.Zero(t, f.requests)
	})

	t.Run("refresh picks up the new balance", func(t *testing.T) {
		f := newFakePlatform(t)
		refreshed := testUser
		refreshed.Balance = 123000
		f.respond("/api/auth/verify-token.php", http.StatusOK, map[string]any{
			"success": true,
			"user":    refreshed,
		})
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		sess.InstallIdentity("bearer", testUser)
		require.NoError(t, sessions.SaveSession(ctx, sess))

		user, err := auth.RefreshUser(ctx, &sess)
		require.NoError(t, err)
		require.EqualValues(t, 123000, user.Balance)

		stored, err := sessions.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		require.EqualValues(t, 123000, stored.User.Balance)

		// Refreshing again with an unchanged token is idempotent.
		again, err := auth.RefreshUser(ctx, &sess)
		require.NoError(t, err)
		require.Equal(t, *user, *again)
	})
}

func TestPasswordLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success installs identity", func(t *testing.T) {
		f := newFakePlatform(t)
		f.respond("/api/auth/login.php", http.StatusOK, map[string]any{
			"success": true,
			"user":    testUser,
			"token":   "pwd-bearer",
		})
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		user, err := auth.Login(ctx, &sess, "linh", "hunter2")
		require.NoError(t, err)
		require.Equal(t, "linh", user.Username)
		require.Equal(t, "pwd-bearer", sess.Token)

		stored, err := sessions.GetSession(ctx, sess.ID)
		require.NoError(t, err)
		require.True(t, stored.LoggedIn())
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newFakePlatform(t)
		f.respond("/api/auth/login.php", http.StatusOK, map[string]any{
			"success": false,
			"error":   "invalid username or password",
		})
		sessions := newTestSessions(t)
		auth := newTestAuth(t, f, sessions)

		sess := newTestSession(t, sessions)
		_, err := auth.Login(ctx, &sess, "linh", "wrong")
		var perr *platformsdk.Error
		require.ErrorAs(t, err, &perr)
		require.False(t, sess.LoggedIn())
	})
}

func TestLogout(t *testing.T) {
	f := newFakePlatform(t)
	sessions := newTestSessions(t)
	auth := newTestAuth(t, f, sessions)
	ctx := context.Background()

	sess := newTestSession(t, sessions)
	sess.InstallIdentity("bearer", testUser)
	sess.Cart = domain.Cart{{ProductID: 1, Quantity: 1, Price: 10000, Name: "Banh mi"}}
	require.NoError(t, sessions.SaveSession(ctx, sess))

	require.NoError(t, auth.Logout(ctx, &sess))
	require.False(t, sess.LoggedIn())

	stored, err := sessions.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Token)
	require.Nil(t, stored.User)

	// Logout is local; the platform is never called and the cart survives.
	require.Zero(t, f.requests)
	require.Len(t, stored.Cart, 1)
}
