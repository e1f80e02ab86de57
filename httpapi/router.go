// Package httpapi exposes the engine's five public operations (§6) over
// HTTP using chi for routing and go-chi/cors for browser access.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	engine "github.com/kalmanoharan/rebalance-engine"
)

// NewRouter builds the HTTP handler tree for a wired Engine.
func NewRouter(eng *engine.Engine, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := &handler{engine: eng}

	r.Route("/api/users/{user}", func(r chi.Router) {
		r.Get("/analysis", h.analysis)
		r.Get("/drift-summary", h.driftSummary)
		r.Get("/suggestions", h.suggestions)
		r.Post("/performance", h.performance)
		r.Post("/performance/breakdown", h.performanceBreakdown)
		r.Post("/holdings/{symbol}/performance", h.holdingPerformance)

		r.Route("/strategies", func(r chi.Router) {
			r.Get("/", h.listStrategies)
			r.Post("/", h.createStrategy)
			r.Route("/{strategyID}", func(r chi.Router) {
				r.Get("/", h.getStrategy)
				r.Put("/", h.updateStrategy)
				r.Delete("/", h.deleteStrategy)
				r.Post("/activate", h.activateStrategy)

				r.Route("/class-targets", func(r chi.Router) {
					r.Post("/", h.createClassTarget)
					r.Route("/{classTargetID}", func(r chi.Router) {
						r.Put("/", h.updateClassTarget)
						r.Delete("/", h.deleteClassTarget)

						r.Route("/sub-class-targets", func(r chi.Router) {
							r.Post("/", h.createSubClassTarget)
							r.Route("/{subClassTargetID}", func(r chi.Router) {
								r.Put("/", h.updateSubClassTarget)
								r.Delete("/", h.deleteSubClassTarget)
							})
						})
					})
				})

				r.Route("/exclusions", func(r chi.Router) {
					r.Get("/", h.listExclusions)
					r.Put("/", h.upsertExclusion)
					r.Delete("/{exclusionID}", h.deleteExclusion)
				})
			})
		})
	})

	return r
}
