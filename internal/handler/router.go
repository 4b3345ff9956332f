package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openscout/scout/internal/handler/conversation"
	"github.com/openscout/scout/internal/handler/events"
	"github.com/openscout/scout/internal/handler/search"
	middlewarePkg "github.com/openscout/scout/internal/middleware"
	"github.com/openscout/scout/internal/store"
)

// NewRouter wires HTTP routes to core services. orchestrator may be nil when
// the completion service is not configured; /search then answers 503.
func NewRouter(st *store.Store, orchestrator search.Orchestrator, feed *store.Feed) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// The search endpoint lives at the root; it is the contract the frontend
	// and external callers depend on.
	search.New(orchestrator).RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		conversation.New(st).RegisterRoutes(api)
		if feed != nil {
			events.New(feed).RegisterRoutes(api)
		}
	})

	return r
}
