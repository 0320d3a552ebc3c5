package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chommo/shopfront/internal/shopfront/service"
	"github.com/chommo/shopfront/internal/shopfront/session"
	"github.com/chommo/shopfront/pkg/httpx"
	"github.com/chommo/shopfront/pkg/platformsdk"
	"github.com/chommo/shopfront/pkg/slogx"
)

// CheckoutHandler submits the session's cart as a balance payment.
type CheckoutHandler struct {
	Checkout *service.Checkout
	Sessions *session.Manager
	Logger   *slog.Logger
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		CustomerInfo platformsdk.CustomerInfo `json:"customer_info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.Sessions.Resolve(ctx, r)
	if err != nil {
		httpx.WriteJSONError(w, http.StatusUnauthorized, "please log in to check out")
		return
	}

	result, err := h.Checkout.ProcessPayment(ctx, &sess, req.CustomerInfo)
	if err != nil {
		status, message := checkoutErrorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("checkout failed", "error", err)
		}
		httpx.WriteJSONError(w, status, message)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"order_id": result.OrderID,
		"balance":  result.Balance,
	})
}

func checkoutErrorResponse(err error) (int, string) {
	var perr *platformsdk.Error

	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		return http.StatusUnauthorized, "please log in to check out"
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, "your cart is empty"
	case errors.Is(err, service.ErrIncompleteCustomerInfo):
		return http.StatusBadRequest, "full name, phone and address are required"
	case errors.Is(err, service.ErrInsufficientBalance):
		return http.StatusBadRequest, "your balance does not cover this order"
	case errors.As(err, &perr):
		return http.StatusBadGateway, perr.Message
	default:
		return http.StatusInternalServerError, "payment failed, please try again"
	}
}
