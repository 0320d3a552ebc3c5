package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chommo/shopfront/internal/shopfront/service"
	"github.com/chommo/shopfront/internal/shopfront/session"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/httpx"
	"github.com/chommo/shopfront/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	Sessions *session.Manager

	AuthService     *service.Auth
	CatalogService  *service.Catalog
	CheckoutService *service.Checkout
}

func NewRouter(buildVersion string, st store.Store, sessions *session.Manager, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		Sessions:     sessions,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerAuth()
	r.registerCart()
	r.registerCheckout()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerPages() {
	h := &PagesHandler{
		Catalog:  r.CatalogService,
		Auth:     r.AuthService,
		Sessions: r.Sessions,
		Logger:   r.logger,
	}

	r.Mux.Handle("GET /{$}",
		httpx.Chain(http.HandlerFunc(h.HandleHome),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /products",
		httpx.Chain(http.HandlerFunc(h.HandleProducts),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /products/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleProduct),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /cart",
		httpx.Chain(http.HandlerFunc(h.HandleCartPage),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /checkout",
		httpx.Chain(http.HandlerFunc(h.HandleCheckoutPage),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		Auth:     r.AuthService,
		Catalog:  r.CatalogService,
		Sessions: r.Sessions,
		Logger:   r.logger,
	}

	// Redirect handshake. The browser navigates these, so failures render
	// HTML rather than JSON.
	r.Mux.Handle("GET /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLoginRedirect),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /auth/callback",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogoutForm),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// JSON auth API. Login attempts get the strict limit.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLoginJSON),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogoutJSON),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerCart() {
	h := &CartHandler{
		Sessions: r.Sessions,
		Store:    r.store,
		Logger:   r.logger,
	}

	r.Mux.Handle("GET /api/cart",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /api/cart",
		httpx.Chain(http.HandlerFunc(h.HandlePut),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /api/cart",
		httpx.Chain(http.HandlerFunc(h.HandleClear),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerCheckout() {
	h := &CheckoutHandler{
		Checkout: r.CheckoutService,
		Sessions: r.Sessions,
		Logger:   r.logger,
	}

	// Payment attempts are strictly limited.
	r.Mux.Handle("POST /api/checkout",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.CatalogService))
}
