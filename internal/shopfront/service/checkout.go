package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/platformsdk"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no items.
	ErrEmptyCart = errors.New("empty_cart")

	// ErrIncompleteCustomerInfo is returned when the delivery details are
	// missing a required field.
	ErrIncompleteCustomerInfo = errors.New("incomplete_customer_info")

	// ErrInsufficientBalance is returned when the buyer's balance cannot
	// cover the cart total.
	ErrInsufficientBalance = errors.New("insufficient_balance")
)

// Checkout submits cart payments against the buyer's platform balance.
type Checkout struct {
	Platform *platformsdk.Client
	Sessions store.Sessions
	Auth     *Auth

	// Subdomain identifies this shop to the payment endpoint.
	Subdomain string

	Logger *slog.Logger
}

// CheckoutResult is what a successful payment leaves behind.
type CheckoutResult struct {
	OrderID string
	// Balance is the buyer's balance after payment.
	Balance int64
}

// ProcessPayment validates the preconditions locally and, only when all of
// them hold, submits the payment to the platform:
//
//   - the session holds a verified identity (ErrNotLoggedIn)
//   - the cart is non-empty (ErrEmptyCart)
//   - full name, phone and address are present (ErrIncompleteCustomerInfo)
//   - the verified balance covers the cart total (ErrInsufficientBalance)
//
// A precondition failure performs no network call and leaves the cart and
// session untouched. A platform rejection likewise leaves everything in
// place so the buyer can retry. On success the cart is cleared and the
// profile re-verified so the new balance is visible immediately.
func (c *Checkout) ProcessPayment(ctx context.Context, sess *domain.Session, info platformsdk.CustomerInfo) (*CheckoutResult, error) {
	if !sess.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if sess.Cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(info.FullName) == "" ||
		strings.TrimSpace(info.Phone) == "" ||
		strings.TrimSpace(info.Address) == "" {
		return nil, ErrIncompleteCustomerInfo
	}

	total := sess.Cart.Total()
	if sess.User.Balance < total {
		return nil, ErrInsufficientBalance
	}

	orderID, err := c.Platform.SubmitPayment(ctx, sess.Token, platformsdk.PaymentRequest{
		Amount:       total,
		Subdomain:    c.Subdomain,
		Items:        sess.Cart,
		CustomerInfo: info,
	})
	if err != nil {
		c.Logger.WarnContext(ctx, "payment rejected",
			slog.String("session_id", sess.ID),
			slog.Int64("amount", total),
			slog.Any("error", err),
		)
		return nil, err
	}

	sess.Cart = domain.Cart{}
	if err := c.Sessions.SaveSession(ctx, *sess); err != nil {
		return nil, fmt.Errorf("persist cleared cart: %w", err)
	}

	c.Logger.InfoContext(ctx, "payment completed",
		slog.String("session_id", sess.ID),
		slog.String("order_id", orderID),
		slog.Int64("amount", total),
	)

	// Best effort: a refresh failure does not undo a completed payment.
	balance := sess.User.Balance - total
	if user, err := c.Auth.RefreshUser(ctx, sess); err == nil && user != nil {
		balance = user.Balance
	}

	return &CheckoutResult{OrderID: orderID, Balance: balance}, nil
}
