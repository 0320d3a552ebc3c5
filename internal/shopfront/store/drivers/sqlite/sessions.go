package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/platformsdk"
)

type sessionsRepo struct {
	db *sql.DB
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	userJSON, cartJSON, err := encodeSession(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, user_json, oauth_state, pre_login_url, cart_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		s.ID, s.Token, userJSON, s.OAuthState, s.PreLoginURL, cartJSON,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionsRepo) GetSession(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token, user_json, oauth_state, pre_login_url, cart_json, created_at, updated_at
		FROM sessions WHERE id = ?`, id,
	)

	var (
		s        domain.Session
		userJSON sql.NullString
		cartJSON string
	)
	err := row.Scan(&s.ID, &s.Token, &userJSON, &s.OAuthState, &s.PreLoginURL, &cartJSON, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("scan session: %w", err)
	}

	if userJSON.Valid && userJSON.String != "" {
		var user platformsdk.User
		if err := json.Unmarshal([]byte(userJSON.String), &user); err != nil {
			return domain.Session{}, fmt.Errorf("decode session user: %w", err)
		}
		s.User = &user
	}

	if cartJSON != "" {
		if err := json.Unmarshal([]byte(cartJSON), &s.Cart); err != nil {
			return domain.Session{}, fmt.Errorf("decode session cart: %w", err)
		}
	}

	return s, nil
}

func (r *sessionsRepo) SaveSession(ctx context.Context, s domain.Session) error {
	userJSON, cartJSON, err := encodeSession(s)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET token = ?, user_json = ?, oauth_state = ?, pre_login_url = ?, cart_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.Token, userJSON, s.OAuthState, s.PreLoginURL, cartJSON, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteIdleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	// CURRENT_TIMESTAMP writes UTC text, so compare against the same shape.
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < ?`, cutoff.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// encodeSession serializes the user snapshot and cart. The cart is always a
// valid JSON array so reads never have to special-case NULL.
func encodeSession(s domain.Session) (userJSON sql.NullString, cartJSON string, err error) {
	if s.User != nil {
		buf, err := json.Marshal(s.User)
		if err != nil {
			return sql.NullString{}, "", fmt.Errorf("encode session user: %w", err)
		}
		userJSON = sql.NullString{String: string(buf), Valid: true}
	}

	cart := s.Cart
	if cart == nil {
		cart = domain.Cart{}
	}
	buf, err := json.Marshal(cart)
	if err != nil {
		return sql.NullString{}, "", fmt.Errorf("encode session cart: %w", err)
	}

	return userJSON, string(buf), nil
}
