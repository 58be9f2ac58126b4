package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ch1nq/arcadio-go/pkg/api/handlers"
	"github.com/ch1nq/arcadio-go/pkg/api/middleware"
	"github.com/ch1nq/arcadio-go/pkg/fleet"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/repositories"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
}

type NewAPIServerOptions struct {
	Port         int
	FleetManager *fleet.Manager
	// Repository enables the match routes when set.
	Repository repositories.Repository
}

// NewAPIServer creates a new http.Server for handling API requests
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
	}
}

// NewRouter builds the API route table.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.NewLoggingMiddleware())
	router.HandleFunc("/healthz", handlers.HandleHealthz()).Methods(http.MethodGet)
	router.HandleFunc("/status", handlers.HandleGetStatus(opts.FleetManager, opts.Repository)).Methods(http.MethodGet)
	if opts.Repository != nil {
		router.HandleFunc("/matches", handlers.HandleListMatches(opts.Repository)).Methods(http.MethodGet)
		router.HandleFunc("/matches/{matchID}", handlers.HandleGetMatch(opts.Repository)).Methods(http.MethodGet)
	}
	return router
}

// Start starts the APIServer
func (s *APIServer) Start() {
	log.Info("API server listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
