package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmbaptista/stockwise/internal/http/catalog"
	"github.com/dmbaptista/stockwise/internal/http/export"
	"github.com/dmbaptista/stockwise/internal/http/importsales"
	"github.com/dmbaptista/stockwise/internal/http/sales"
	"github.com/dmbaptista/stockwise/internal/http/stats"
	"github.com/dmbaptista/stockwise/internal/http/sync"
)

func New(
	productsV1 *catalog.Handler,
	salesV1 *sales.Handler,
	importV1 *importsales.Handler,
	statsV1 *stats.Handler,
	syncV1 *sync.Handler,
	exportV1 *export.Handler,
	authSecret string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		// Auth is optional: a deployment without a secret runs open,
		// which is how single-shop installs behind a LAN use it.
		if authSecret != "" {
			r.Use(Auth(authSecret))
		}

		r.Route("/products", func(r chi.Router) {
			productsV1.Routes(r)
		})

		r.Route("/sales", func(r chi.Router) {
			salesV1.Routes(r)
		})

		r.Route("/import", importV1.Routes)

		r.Route("/stats", func(r chi.Router) {
			statsV1.Routes(r)
		})

		r.Route("/sync", func(r chi.Router) {
			syncV1.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			exportV1.Routes(r)
		})
	})

	return router
}
