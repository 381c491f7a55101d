// Package server exposes a Facet store over HTTP. Each model gets a small
// JSON query surface carrying where/select/include directives, mirroring
// the library API one to one.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesh-intelligence/facet/pkg/types"
)

// Server serves query and write operations for an attached store.
type Server struct {
	store   types.Store
	log     *slog.Logger
	metrics *metrics
	router  chi.Router
}

// New creates a Server around an attached store.
func New(store types.Store, log *slog.Logger) *Server {
	s := &Server{
		store:   store,
		log:     log,
		metrics: newMetrics(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	r.Route("/v1/{model}", func(r chi.Router) {
		r.Post("/find-unique", s.handle("find-unique", s.findUnique))
		r.Post("/find-many", s.handle("find-many", s.findMany))
		r.Post("/create", s.handle("create", s.create))
		r.Post("/update", s.handle("update", s.update))
		r.Post("/delete", s.handle("delete", s.delete))
		r.Post("/count", s.handle("count", s.count))
	})

	s.router = r
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
