package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/session"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/httpx"
	"github.com/chommo/shopfront/pkg/platformsdk"
	"github.com/chommo/shopfront/pkg/slogx"
)

// Caps on client-supplied cart contents. maxCartItems bounds the session
// row size; the quantity and price caps keep line totals far from int64
// range while staying well above any real order.
const (
	maxCartItems    = 100
	maxItemQuantity = 1000
	maxItemPrice    = 1_000_000_000_000 // one trillion VND per unit
)

// CartHandler is the wholesale cart API: reads return the whole cart,
// writes replace it. No per-line update protocol.
type CartHandler struct {
	Sessions *session.Manager
	Store    store.Store
	Logger   *slog.Logger
}

type cartResponse struct {
	Success bool                   `json:"success"`
	Items   []platformsdk.CartItem `json:"items"`
	Total   int64                  `json:"total"`
}

func writeCart(w http.ResponseWriter, cart domain.Cart) {
	items := cart
	if items == nil {
		items = domain.Cart{}
	}
	httpx.WriteJSON(w, http.StatusOK, cartResponse{
		Success: true,
		Items:   items,
		Total:   cart.Total(),
	})
}

func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Sessions.ResolveOrCreate(ctx, w, r)
	if err != nil {
		slogx.FromContext(ctx).Error("session resolution failed", "error", err)
		httpx.WriteJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	writeCart(w, sess.Cart)
}

func (h *CartHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Items []platformsdk.CartItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) > maxCartItems {
		httpx.WriteJSONError(w, http.StatusBadRequest, "too many cart items")
		return
	}
	for _, item := range req.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 || item.Quantity > maxItemQuantity ||
			item.Price < 0 || item.Price > maxItemPrice {
			httpx.WriteJSONError(w, http.StatusBadRequest, "invalid cart item")
			return
		}
	}

	sess, err := h.Sessions.ResolveOrCreate(ctx, w, r)
	if err != nil {
		log.Error("session resolution failed", "error", err)
		httpx.WriteJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	sess.Cart = domain.Cart(req.Items)
	if err := h.Store.Sessions().SaveSession(ctx, sess); err != nil {
		log.Error("cart save failed", "error", err)
		httpx.WriteJSONError(w, http.StatusInternalServerError, "could not save cart")
		return
	}

	writeCart(w, sess.Cart)
}

func (h *CartHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.ResolveOrCreate(ctx, w, r)
	if err != nil {
		log.Error("session resolution failed", "error", err)
		httpx.WriteJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	sess.Cart = domain.Cart{}
	if err := h.Store.Sessions().SaveSession(ctx, sess); err != nil {
		log.Error("cart save failed", "error", err)
		httpx.WriteJSONError(w, http.StatusInternalServerError, "could not clear cart")
		return
	}

	writeCart(w, sess.Cart)
}
