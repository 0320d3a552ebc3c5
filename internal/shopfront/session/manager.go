// Package session binds browsers to server-side session rows. The cookie
// value is a compact HS256 JWT whose subject is the session ID, so a stolen
// database backup alone cannot be used to mint valid cookies.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/idx"
)

const issuer = "shopfront"

var (
	ErrNoSession      = errors.New("session: no session cookie")
	ErrInvalidSession = errors.New("session: invalid session cookie")
)

// Manager issues and resolves session cookies.
type Manager struct {
	Sessions   store.Sessions
	SigningKey []byte

	// TTL bounds both the cookie lifetime and the JWT expiry. Idle rows
	// older than this are also what housekeeping purges.
	TTL time.Duration

	// Secure marks cookies Secure; leave false only for local development
	// over plain HTTP.
	Secure bool
}

type cookieClaims struct {
	jwt.RegisteredClaims
}

func (m *Manager) cookieOptions() CookieOptions {
	return CookieOptions{Secure: m.Secure}
}

// Issue mints a signed cookie for the given session ID and sets it on the
// response.
func (m *Manager) Issue(w http.ResponseWriter, sessionID string) error {
	now := time.Now().UTC()
	expiresAt := now.Add(m.TTL)

	claims := cookieClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.SigningKey)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	SetCookie(w, signed, expiresAt, m.cookieOptions())
	return nil
}

// Resolve returns the session referenced by the request's cookie.
//
// Returns ErrNoSession when the request carries no cookie, and
// ErrInvalidSession when the cookie fails signature or expiry checks or
// references a session row that no longer exists.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (domain.Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return domain.Session{}, ErrNoSession
	}

	sessionID, err := m.verify(cookie.Value)
	if err != nil {
		return domain.Session{}, err
	}

	sess, err := m.Sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Session{}, ErrInvalidSession
	}
	if err != nil {
		return domain.Session{}, err
	}
	return sess, nil
}

// ResolveOrCreate resolves the request's session, creating and issuing a
// fresh one when the request has no usable cookie. Store errors other than
// a missing row still fail.
func (m *Manager) ResolveOrCreate(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.Session, error) {
	sess, err := m.Resolve(ctx, r)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, ErrNoSession) && !errors.Is(err, ErrInvalidSession) {
		return domain.Session{}, err
	}

	sess = domain.Session{ID: idx.New().String()}
	if err := m.Sessions.CreateSession(ctx, sess); err != nil {
		return domain.Session{}, err
	}
	if err := m.Issue(w, sess.ID); err != nil {
		return domain.Session{}, err
	}
	return m.Sessions.GetSession(ctx, sess.ID)
}

// Destroy deletes the session row and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err == nil {
		if sessionID, verr := m.verify(cookie.Value); verr == nil {
			if derr := m.Sessions.DeleteSession(ctx, sessionID); derr != nil {
				return derr
			}
		}
	}

	ClearCookie(w, m.cookieOptions())
	return nil
}

// verify checks the cookie JWT and returns the session ID it references.
func (m *Manager) verify(value string) (string, error) {
	var claims cookieClaims
	_, err := jwt.ParseWithClaims(value, &claims,
		func(t *jwt.Token) (any, error) { return m.SigningKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", ErrInvalidSession
	}
	if claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
