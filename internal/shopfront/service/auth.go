package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/cryptox"
	"github.com/chommo/shopfront/pkg/platformsdk"
)

var (
	// ErrNotLoggedIn is returned by operations that require a verified
	// platform identity.
	ErrNotLoggedIn = errors.New("not_logged_in")

	// ErrNoPendingLogin is returned by HandleCallback when the session has
	// no handshake in flight, including a replayed callback whose state was
	// already consumed.
	ErrNoPendingLogin = errors.New("no_pending_login")

	// ErrCallbackIncomplete is returned when the callback request is
	// missing its code or state parameter.
	ErrCallbackIncomplete = errors.New("callback_incomplete")
)

// PlatformDeniedError carries the error the platform appended to the
// callback redirect (e.g. the user pressed deny on the consent page).
type PlatformDeniedError struct {
	Reason string
}

func (e *PlatformDeniedError) Error() string {
	return fmt.Sprintf("platform denied authorization: %s", e.Reason)
}

// StateMismatchError reports an anti-forgery state check failure. Both
// values are kept so the error page can show what went wrong; state values
// are single-use random nonces, not secrets, once the handshake is dead.
type StateMismatchError struct {
	Received string
	Expected string
}

func (e *StateMismatchError) Error() string {
	return fmt.Sprintf("oauth state mismatch: received %q, expected %q", e.Received, e.Expected)
}

// Auth owns the login lifecycle of a session: the redirect handshake with
// the platform, token verification, the inline password login, and logout.
//
// All methods mutate the passed session in place and persist it, so the
// caller's copy always reflects what was stored.
type Auth struct {
	Platform *platformsdk.Client
	Sessions store.Sessions

	// PublicBaseURL is this storefront's externally reachable origin,
	// used to build the OAuth redirect URI. No trailing slash.
	PublicBaseURL string

	Logger *slog.Logger
}

func (a *Auth) redirectURI() string {
	return a.PublicBaseURL + "/auth/callback"
}

// InitiateLogin starts the redirect handshake: it generates a fresh
// anti-forgery state, persists it together with the URL to return to after
// login, and returns the platform authorize URL to navigate the browser to.
//
// The state is written durably before the URL is returned; an initiation
// that cannot persist its state must not redirect.
func (a *Auth) InitiateLogin(ctx context.Context, sess *domain.Session, returnTo string) (string, error) {
	state := cryptox.MustGenerateToken(cryptox.TokenSize128)

	sess.OAuthState = state
	sess.PreLoginURL = returnTo
	if err := a.Sessions.SaveSession(ctx, *sess); err != nil {
		return "", fmt.Errorf("persist handshake state: %w", err)
	}

	a.Logger.InfoContext(ctx, "login handshake initiated",
		slog.String("session_id", sess.ID),
		slog.String("return_to", returnTo),
	)

	return a.Platform.BuildAuthorizeURL(a.redirectURI(), state), nil
}

// HandleCallback processes the platform's redirect back to the storefront.
// It runs one pass through the checks below and returns the URL the browser
// should land on after the success page:
//
//  1. platformErr set (the platform reported denial) → *PlatformDeniedError
//  2. no handshake pending on this session → ErrNoPendingLogin
//  3. code or state missing → ErrCallbackIncomplete
//  4. state not exactly equal to the persisted one → *StateMismatchError
//  5. code exchange rejected or unreachable → the platform error
//
// The persisted state is consumed on every terminal outcome, success or
// error, so a replayed callback lands on ErrNoPendingLogin instead of
// re-running the exchange.
func (a *Auth) HandleCallback(ctx context.Context, sess *domain.Session, code, state, platformErr string) (string, error) {
	if sess.OAuthState == "" {
		return "", ErrNoPendingLogin
	}

	returnTo := sess.PreLoginURL
	if returnTo == "" {
		returnTo = "/"
	}

	// Consume the handshake no matter how this pass ends.
	expected := sess.OAuthState
	sess.ClearHandshake()
	if err := a.Sessions.SaveSession(ctx, *sess); err != nil {
		return "", fmt.Errorf("consume handshake state: %w", err)
	}

	if platformErr != "" {
		return "", &PlatformDeniedError{Reason: platformErr}
	}
	if code == "" || state == "" {
		return "", ErrCallbackIncomplete
	}
	if state != expected {
		a.Logger.WarnContext(ctx, "oauth state mismatch",
			slog.String("session_id", sess.ID),
		)
		return "", &StateMismatchError{Received: state, Expected: expected}
	}

	result, err := a.Platform.ExchangeCode(ctx, code, a.redirectURI())
	if err != nil {
		return "", err
	}

	sess.InstallIdentity(result.Token, result.User)
	if err := a.Sessions.SaveSession(ctx, *sess); err != nil {
		return "", fmt.Errorf("persist session identity: %w", err)
	}

	a.Logger.InfoContext(ctx, "login completed",
		slog.String("session_id", sess.ID),
		slog.String("username", result.User.Username),
		slog.String("token_fp", cryptox.FingerprintToken(result.Token)),
	)

	return returnTo, nil
}

// Login performs the inline password login against the platform and installs
// the resulting identity on the session.
func (a *Auth) Login(ctx context.Context, sess *domain.Session, username, password string) (*platformsdk.User, error) {
	result, err := a.Platform.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sess.InstallIdentity(result.Token, result.User)
	if err := a.Sessions.SaveSession(ctx, *sess); err != nil {
		return nil, fmt.Errorf("persist session identity: %w", err)
	}

	a.Logger.InfoContext(ctx, "password login completed",
		slog.String("session_id", sess.ID),
		slog.String("username", result.User.Username),
	)

	return sess.User, nil
}

// Logout clears the session's identity. It never calls the platform; the
// bearer token is simply forgotten. The cart survives logout.
func (a *Auth) Logout(ctx context.Context, sess *domain.Session) error {
	sess.ClearIdentity()
	sess.ClearHandshake()
	if err := a.Sessions.SaveSession(ctx, *sess); err != nil {
		return fmt.Errorf("persist logout: %w", err)
	}

	a.Logger.InfoContext(ctx, "logged out", slog.String("session_id", sess.ID))
	return nil
}

// RefreshUser re-verifies the session's token and refreshes the profile
// snapshot, most importantly the balance. A session without a token is a
// no-op. A rejected token logs the session out.
func (a *Auth) RefreshUser(ctx context.Context, sess *domain.Session) (*platformsdk.User, error) {
	if sess.Token == "" {
		return nil, nil
	}
	return a.Verify(ctx, sess)
}

// CurrentUser returns the session's verified identity, verifying the token
// against the platform when the session holds a token but no profile yet.
// A logged-out session returns nil with no error.
func (a *Auth) CurrentUser(ctx context.Context, sess *domain.Session) (*platformsdk.User, error) {
	if sess.User != nil {
		return sess.User, nil
	}
	if sess.Token == "" {
		return nil, nil
	}
	return a.Verify(ctx, sess)
}

// Verify checks the session's token with the platform and always terminates
// in a definite state: success refreshes and persists the profile snapshot,
// while any rejection or transport failure clears the identity so a stale
// token cannot linger as a half-logged-in state.
func (a *Auth) Verify(ctx context.Context, sess *domain.Session) (*platformsdk.User, error) {
	user, err := a.Platform.VerifyToken(ctx, sess.Token)
	if err != nil {
		fp := cryptox.FingerprintToken(sess.Token)
		sess.ClearIdentity()
		if serr := a.Sessions.SaveSession(ctx, *sess); serr != nil {
			return nil, fmt.Errorf("persist cleared identity: %w", serr)
		}

		a.Logger.InfoContext(ctx, "token verification failed, session logged out",
			slog.String("session_id", sess.ID),
			slog.String("token_fp", fp),
			slog.Any("error", err),
		)
		return nil, err
	}

	sess.User = user
	if err := a.Sessions.SaveSession(ctx, *sess); err != nil {
		return nil, fmt.Errorf("persist refreshed profile: %w", err)
	}
	return sess.User, nil
}
