package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chommo/shopfront/internal/shopfront/domain"
	"github.com/chommo/shopfront/internal/shopfront/service"
	"github.com/chommo/shopfront/internal/shopfront/session"
	"github.com/chommo/shopfront/pkg/platformsdk"
	"github.com/chommo/shopfront/pkg/slogx"
)

const productPageSize = 20

// PagesHandler renders the storefront HTML pages. Every page degrades
// gracefully when the platform is unreachable: the header renders without
// shop info and the page shows what it can.
type PagesHandler struct {
	Catalog  *service.Catalog
	Auth     *service.Auth
	Sessions *session.Manager
	Logger   *slog.Logger
}

// pageContext resolves the session and builds the header material shared by
// every page. A session or verification failure renders as logged-out
// rather than an error page.
func (h *PagesHandler) pageContext(w http.ResponseWriter, r *http.Request) (domain.Session, pageData) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	data := pageData{}

	sess, err := h.Sessions.ResolveOrCreate(ctx, w, r)
	if err != nil {
		log.Error("session resolution failed", "error", err)
		return domain.Session{}, data
	}

	user, err := h.Auth.CurrentUser(ctx, &sess)
	if err != nil && !isPlatformRejection(err) {
		log.Warn("profile refresh failed", "error", err)
	}
	data.User = user
	data.CartCount = len(sess.Cart)

	if shop, err := h.Catalog.ShopInfo(ctx); err == nil {
		data.Shop = &shop
	} else {
		log.Warn("shop info unavailable", "error", err)
	}

	return sess, data
}

// isPlatformRejection reports whether err is the platform rejecting a
// request, as opposed to a transport or storage failure.
func isPlatformRejection(err error) bool {
	var perr *platformsdk.Error
	return errors.As(err, &perr)
}

func (h *PagesHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, data := h.pageContext(w, r)

	products, err := h.Catalog.Products(ctx, 1, productPageSize)
	if err != nil {
		slogx.FromContext(ctx).Warn("product listing unavailable", "error", err)
	}
	data.Products = products

	h.render(r, w, http.StatusOK, "home", data)
}

func (h *PagesHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, data := h.pageContext(w, r)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	query := r.URL.Query().Get("q")

	var products []platformsdk.Product
	if query != "" {
		products, err = h.Catalog.Search(ctx, query, page)
	} else {
		products, err = h.Catalog.Products(ctx, page, productPageSize)
	}
	if err != nil {
		slogx.FromContext(ctx).Warn("product listing unavailable", "error", err)
	}

	data.Title = "Products"
	data.Products = products
	data.Query = query
	data.Page = page
	h.render(r, w, http.StatusOK, "products", data)
}

func (h *PagesHandler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	_, data := h.pageContext(w, r)

	product, err := h.Catalog.Product(ctx, r.PathValue("id"))
	if err != nil {
		data.Title = "Product not found"
		data.Message = "This product does not exist or is no longer available."
		h.render(r, w, http.StatusNotFound, "error", data)
		return
	}

	data.Title = product.Name
	data.Product = &product
	h.render(r, w, http.StatusOK, "product", data)
}

func (h *PagesHandler) HandleCartPage(w http.ResponseWriter, r *http.Request) {
	sess, data := h.pageContext(w, r)

	data.Title = "Cart"
	data.Cart = sess.Cart
	data.Total = sess.Cart.Total()
	h.render(r, w, http.StatusOK, "cart", data)
}

func (h *PagesHandler) HandleCheckoutPage(w http.ResponseWriter, r *http.Request) {
	sess, data := h.pageContext(w, r)

	data.Title = "Checkout"
	data.Cart = sess.Cart
	data.Total = sess.Cart.Total()
	h.render(r, w, http.StatusOK, "checkout", data)
}

func (h *PagesHandler) render(r *http.Request, w http.ResponseWriter, status int, name string, data pageData) {
	if err := renderPage(w, status, name, data); err != nil {
		slogx.FromContext(r.Context()).Error("page render failed", "page", name, "error", err)
	}
}
