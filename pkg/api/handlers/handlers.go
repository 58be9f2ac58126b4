package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ch1nq/arcadio-go/pkg/fleet"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/repositories"
	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
	"github.com/ch1nq/arcadio-go/pkg/version"
	"github.com/gorilla/mux"
)

const (
	DefaultMatchesLimit = 50
	MaxMatchesLimit     = 500
)

func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}

type StatusResponse struct {
	Version string       `json:"version"`
	Fleet   fleet.Status `json:"fleet"`
	// Strategies holds per-strategy match outcomes. Only present when a
	// repository is configured.
	Strategies []*models.StrategyStats `json:"strategies,omitempty"`
}

func HandleGetStatus(fleetManager *fleet.Manager, repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := StatusResponse{
			Version: version.Get(),
			Fleet:   fleetManager.Status(),
		}
		if repository != nil {
			stats, err := repository.GetStrategyStats(r.Context())
			if err != nil {
				log.Error("failed to get strategy stats: %v", err)
				http.Error(w, "Failed to get strategy stats", http.StatusInternalServerError)
				return
			}
			response.Strategies = stats
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode status: %v", err)
			http.Error(w, "Failed to encode status", http.StatusInternalServerError)
			return
		}
	}
}

func HandleListMatches(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultMatchesLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "Limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		if limit > MaxMatchesLimit {
			limit = MaxMatchesLimit
		}

		matches, err := repository.ListMatches(r.Context(), limit)
		if err != nil {
			log.Error("failed to list matches: %v", err)
			http.Error(w, "Failed to list matches", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(matches); err != nil {
			log.Error("failed to encode matches: %v", err)
			http.Error(w, "Failed to encode matches", http.StatusInternalServerError)
			return
		}
	}
}

func HandleGetMatch(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := mux.Vars(r)["matchID"]
		match, err := repository.GetMatch(r.Context(), matchID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Match not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get match %s: %v", matchID, err)
			http.Error(w, "Failed to get match", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(match); err != nil {
			log.Error("failed to encode match: %v", err)
			http.Error(w, "Failed to encode match", http.StatusInternalServerError)
			return
		}
	}
}
