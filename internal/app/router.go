package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ballbuild/pos/internal/catalog"
	"github.com/ballbuild/pos/internal/customers"
	"github.com/ballbuild/pos/internal/observability"
	"github.com/ballbuild/pos/internal/sales"
	"github.com/ballbuild/pos/internal/shared"
	"github.com/ballbuild/pos/internal/snapshot"
	"github.com/ballbuild/pos/internal/syncer"
	"github.com/ballbuild/pos/internal/users"
	"github.com/ballbuild/pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	UsersHandler    *users.Handler
	CatalogHandler  *catalog.Handler
	CustomerHandler *customers.Handler
	SalesHandler    *sales.Handler
	SyncHandler     *syncer.Handler
	SnapshotHandler *snapshot.Handler
	JobHandler      *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the terminal API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(LoginRateLimit())
		r.Post("/login", params.UsersHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Post("/logout", params.UsersHandler.Logout)
		r.Get("/me", params.UsersHandler.Me)

		r.Route("/products", func(r chi.Router) {
			params.CatalogHandler.MountRoutes(r, RequireAdmin)
		})
		r.Route("/customers", params.CustomerHandler.MountRoutes)
		r.Route("/cart", params.SalesHandler.MountCartRoutes)
		r.Route("/sales", params.SalesHandler.MountSalesRoutes)

		r.Route("/users", func(r chi.Router) {
			r.Use(RequireAdmin)
			params.UsersHandler.MountRoutes(r)
		})
		r.Route("/sync", func(r chi.Router) {
			params.SyncHandler.MountRoutes(r, RequireAdmin)
		})
		r.Route("/data", func(r chi.Router) {
			params.SnapshotHandler.MountRoutes(r, RequireAdmin)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
