package http

import (
	"net/http"
	"time"

	"github.com/chommo/shopfront/internal/shopfront/service"
	"github.com/chommo/shopfront/internal/shopfront/store"
	"github.com/chommo/shopfront/pkg/httpx"
)

// ReadyzHandler is the readiness probe; it checks the session database and
// platform reachability. The platform check reads shop info through the
// catalog cache, so a healthy steady state costs nothing upstream.
func ReadyzHandler(startTime time.Time, version string, st store.Store, catalog *service.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok", Platform: "ok"}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if _, err := catalog.ShopInfo(r.Context()); err != nil {
			checks.Platform = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
