// Package rest exposes the HTTP API. Routes are versioned under /api/v1
// and everything except the health probes requires authentication.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hoangngo-sudo/the-morytale/infrastructure/di"
	"github.com/hoangngo-sudo/the-morytale/interfaces/http/rest/handlers"
	"github.com/hoangngo-sudo/the-morytale/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(c.Logger))

	if c.Config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.morytale.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(c.JWTValidator))

		submissionHandler := handlers.NewSubmissionHandler(c.SubmissionService, c.ItemRepo, c.ErrorHandler, c.Logger)
		r.Route("/items", func(r chi.Router) {
			r.Post("/", submissionHandler.CreateItem)
			r.Get("/{itemID}", submissionHandler.GetItem)
		})

		trackHandler := handlers.NewTrackHandler(c.TrackService, c.ErrorHandler, c.Logger)
		r.Route("/tracks", func(r chi.Router) {
			r.Get("/current", trackHandler.GetCurrent)
			r.Get("/history", trackHandler.GetHistory)
			r.Get("/{trackID}", trackHandler.GetTrack)
			r.Get("/{trackID}/story", trackHandler.GetStory)
			r.Put("/{trackID}", trackHandler.UpdateTrack)
			r.Post("/{trackID}/conclude", trackHandler.ConcludeTrack)
		})

		nodeHandler := handlers.NewNodeHandler(c.NodeRepo, c.DomainConfig, c.ErrorHandler, c.Logger)
		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", nodeHandler.ListNodes)
			r.Get("/{nodeID}", nodeHandler.GetNode)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	rt.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	rt.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (rt *Router) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
