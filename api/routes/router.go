package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/figpreorders/figorders/api/controllers"
	ordercontrollers "github.com/figpreorders/figorders/api/controllers/orders"
	"github.com/figpreorders/figorders/api/middleware"
	"github.com/figpreorders/figorders/internal/workspace"
	"github.com/figpreorders/figorders/pkg/config"
	"github.com/figpreorders/figorders/pkg/db"
	"github.com/figpreorders/figorders/pkg/logger"
	"github.com/figpreorders/figorders/pkg/redis"
)

// NewRouter mounts the workspace API. idempotency may be nil when Redis is not
// configured; metricsHandler may be nil to leave /metrics unmounted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store db.Pinger,
	idempotency redis.IdempotencyStore,
	ws *workspace.Workspace,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ClientContext())
		idem := middleware.Idempotency(idempotency, logg)

		r.Get("/status", controllers.Status(ws))
		r.Get("/stats", controllers.Stats(ws))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ws, logg))
			r.Get("/export", ordercontrollers.Export(ws, logg))
			r.With(idem).Post("/import", ordercontrollers.Import(ws, logg))
			r.Get("/{orderId}", ordercontrollers.Get(ws, logg))
			r.Patch("/{orderId}/status", ordercontrollers.SetStatus(ws, logg))
			r.Delete("/{orderId}", ordercontrollers.Delete(ws, logg))
			r.With(idem).Post("/{orderId}/edit", ordercontrollers.BeginEdit(ws, logg))
		})

		r.Route("/draft", func(r chi.Router) {
			r.Get("/", ordercontrollers.DraftGet(ws))
			r.With(idem).Post("/items", ordercontrollers.DraftAddItem(ws, logg))
			r.Delete("/items/{index}", ordercontrollers.DraftRemoveItem(ws, logg))
			r.Post("/reset", ordercontrollers.DraftReset(ws))
			r.With(idem).Post("/submit", ordercontrollers.DraftSubmit(ws, logg))
		})

		r.Route("/varieties", func(r chi.Router) {
			r.Get("/", controllers.ListVarieties(ws))
			r.With(idem).Post("/", controllers.AddVariety(ws))
			r.Put("/", controllers.SaveVarieties(ws, logg))
			r.Delete("/{index}", controllers.DeleteVariety(ws, logg))
		})

		r.Route("/links", func(r chi.Router) {
			r.Get("/", controllers.ListLinks(ws))
			r.With(idem).Post("/{kind}", controllers.Link(ws, logg))
			r.Delete("/{kind}", controllers.Unlink(ws, logg))
		})
	})

	return r
}
