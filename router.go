package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. Adjust CORS for your frontend hosts.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000", "https://*.run.app"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/login", a.handleLogin)

		api.Get("/runs", a.handleRuns)
		api.Get("/runs/stats", a.handleRunStats)
		api.Get("/imagery/latest", a.handleLatestImagery)
		api.Get("/ndvi/latest", a.handleLatestIndex)
		api.Get("/ndvi/history", a.handleIndexHistory)
		api.Get("/health/latest", a.handleLatestAssessment)
		api.Get("/weather/latest", a.handleLatestWeather)
		api.Get("/weather/history", a.handleWeatherHistory)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Post("/runs", a.handleTriggerRun)
		})
	})

	return r
}
