package domain

import (
	"time"

	"github.com/chommo/shopfront/pkg/platformsdk"
)

// Session is the per-browser state the storefront keeps server-side: the
// platform bearer token, the verified profile snapshot, the pending OAuth
// handshake values, and the cart. The browser only ever holds the signed
// session ID cookie.
//
// Invariant: User is non-nil exactly when Token was last verified
// successfully against the platform. A token that has not been verified yet
// must not be presented as a logged-in state.
type Session struct {
	ID string

	// Token is the opaque bearer credential issued by the platform.
	// Empty when logged out.
	Token string

	// User is the profile snapshot captured at the last successful
	// verification. Nil when logged out or when Token is unverified.
	User *platformsdk.User

	// OAuthState is the pending anti-forgery value of an in-flight login
	// handshake, written durably before the authorization redirect and
	// consumed by the callback. Empty when no handshake is pending.
	OAuthState string

	// PreLoginURL is where the browser should return after a successful
	// handshake. Stored alongside OAuthState, consumed with it.
	PreLoginURL string

	Cart Cart

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoggedIn reports whether the session holds a verified platform identity.
func (s *Session) LoggedIn() bool {
	return s.User != nil && s.Token != ""
}

// InstallIdentity records a freshly verified token and profile.
func (s *Session) InstallIdentity(token string, user platformsdk.User) {
	s.Token = token
	u := user
	s.User = &u
}

// ClearIdentity drops the token and profile, returning the session to the
// logged-out state. The cart is deliberately left alone.
func (s *Session) ClearIdentity() {
	s.Token = ""
	s.User = nil
}

// ClearHandshake consumes any pending OAuth handshake values.
func (s *Session) ClearHandshake() {
	s.OAuthState = ""
	s.PreLoginURL = ""
}
