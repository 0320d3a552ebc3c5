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

// AuthHandler serves both halves of the login surface: the browser-facing
// redirect handshake (HTML) and the JSON auth API the pages call.
type AuthHandler struct {
	Auth     *service.Auth
	Catalog  *service.Catalog
	Sessions *session.Manager
	Logger   *slog.Logger
}

// safeReturnTo accepts only local paths so the handshake cannot be used as
// an open redirect. Browsers treat backslashes in URLs as slashes, so
// "/\evil.com" navigates to the protocol-relative "//evil.com" and must be
// rejected alongside the literal "//" form.
func safeReturnTo(raw string) string {
	if raw == "" || raw[0] != '/' {
		return "/"
	}
	if len(raw) > 1 && (raw[1] == '/' || raw[1] == '\\') {
		return "/"
	}
	return raw
}

// HandleLoginRedirect starts the handshake and navigates the browser to the
// platform's authorize page.
func (h *AuthHandler) HandleLoginRedirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.ResolveOrCreate(ctx, w, r)
	if err != nil {
		log.Error("session resolution failed", "error", err)
		h.renderError(w, r, "We could not start the login. Please try again.")
		return
	}

	returnTo := safeReturnTo(r.URL.Query().Get("return_to"))
	if returnTo == "/" {
		if ref := r.Header.Get("Referer"); ref != "" {
			if u, err := r.URL.Parse(ref); err == nil && u.Host == r.Host {
				returnTo = safeReturnTo(u.Path)
			}
		}
	}

	authorizeURL, err := h.Auth.InitiateLogin(ctx, &sess, returnTo)
	if err != nil {
		log.Error("login initiation failed", "error", err)
		h.renderError(w, r, "We could not start the login. Please try again.")
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// HandleCallback finishes the handshake. Success renders a confirmation
// page that sends the browser back to where it was after a short pause;
// every failure renders the login error page with a specific message.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, err := h.Sessions.Resolve(ctx, r)
	if err != nil {
		h.renderError(w, r, "Your login session could not be found. Please start again from the shop.")
		return
	}

	q := r.URL.Query()
	returnTo, err := h.Auth.HandleCallback(ctx, &sess, q.Get("code"), q.Get("state"), q.Get("error"))
	if err != nil {
		h.renderError(w, r, callbackErrorMessage(err))
		return
	}

	data := pageData{
		Title:    "Logged in",
		User:     sess.User,
		ReturnTo: safeReturnTo(returnTo),
	}
	if shop, serr := h.Catalog.ShopInfo(ctx); serr == nil {
		data.Shop = &shop
	}

	httpx.NoCache(w)
	if rerr := renderPage(w, http.StatusOK, "login_success", data); rerr != nil {
		log.Error("page render failed", "page", "login_success", "error", rerr)
	}
}

// callbackErrorMessage maps a callback failure to user-facing text.
func callbackErrorMessage(err error) string {
	var denied *service.PlatformDeniedError
	var mismatch *service.StateMismatchError
	var perr *platformsdk.Error

	switch {
	case errors.As(err, &denied):
		return "The login was cancelled or denied: " + denied.Reason
	case errors.Is(err, service.ErrNoPendingLogin):
		return "There is no login in progress. The link may have been used already; please start again."
	case errors.Is(err, service.ErrCallbackIncomplete):
		return "The login response was incomplete. Please start again."
	case errors.As(err, &mismatch):
		return "The login could not be trusted (state mismatch: got " +
			mismatch.Received + ", expected " + mismatch.Expected + "). Please start again."
	case errors.As(err, &perr):
		return "The login was rejected: " + perr.Message
	default:
		return "The login could not be completed. Please try again."
	}
}

// HandleLogoutForm handles the header's logout button. The session row and
// its cart survive; only the identity is dropped.
func (h *AuthHandler) HandleLogoutForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Sessions.Resolve(ctx, r)
	if err == nil {
		if lerr := h.Auth.Logout(ctx, &sess); lerr != nil {
			slogx.FromContext(ctx).Error("logout failed", "error", lerr)
		}
	}

	httpx.NoCache(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLoginJSON is the inline password login used by the login form.
func (h *AuthHandler) HandleLoginJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteJSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	sess, err := h.Sessions.ResolveOrCreate(ctx, w, r)
	if err != nil {
		log.Error("session resolution failed", "error", err)
		httpx.WriteJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	user, err := h.Auth.Login(ctx, &sess, req.Username, req.Password)
	if err != nil {
		var perr *platformsdk.Error
		if errors.As(err, &perr) {
			httpx.WriteJSONError(w, http.StatusUnauthorized, perr.Message)
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteJSONError(w, http.StatusBadGateway, "login is temporarily unavailable")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// HandleLogoutJSON is the JSON twin of the logout form.
func (h *AuthHandler) HandleLogoutJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Sessions.Resolve(ctx, r)
	if err == nil {
		if lerr := h.Auth.Logout(ctx, &sess); lerr != nil {
			slogx.FromContext(ctx).Error("logout failed", "error", lerr)
			httpx.WriteJSONError(w, http.StatusInternalServerError, "logout failed")
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// HandleMe reports the current login state. A logged-out session is a 200
// with a null user, not an error.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Sessions.Resolve(ctx, r)
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": nil})
		return
	}

	user, err := h.Auth.CurrentUser(ctx, &sess)
	if err != nil && !isPlatformRejection(err) {
		slogx.FromContext(ctx).Warn("profile lookup failed", "error", err)
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// HandleRefresh re-verifies the stored token, refreshing the balance. A
// rejected token results in a logged-out state, reported as user null.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := h.Sessions.Resolve(ctx, r)
	if err != nil {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": nil})
		return
	}

	user, err := h.Auth.RefreshUser(ctx, &sess)
	if err != nil && !isPlatformRejection(err) {
		slogx.FromContext(ctx).Warn("profile refresh failed", "error", err)
		httpx.WriteJSONError(w, http.StatusBadGateway, "refresh is temporarily unavailable")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *AuthHandler) renderError(w http.ResponseWriter, r *http.Request, message string) {
	data := pageData{
		Title:   "Login failed",
		Message: message,
	}
	if shop, err := h.Catalog.ShopInfo(r.Context()); err == nil {
		data.Shop = &shop
	}

	httpx.NoCache(w)
	if err := renderPage(w, http.StatusBadRequest, "login_error", data); err != nil {
		slogx.FromContext(r.Context()).Error("page render failed", "page", "login_error", "error", err)
	}
}
