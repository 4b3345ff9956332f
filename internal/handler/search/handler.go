package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	searchmodel "github.com/openscout/scout/internal/model/search"
	searchservice "github.com/openscout/scout/internal/service/search"
	"github.com/openscout/scout/pkg/utils"
)

// Orchestrator runs one search turn. Satisfied by
// *searchservice.Orchestrator; tests substitute fakes.
type Orchestrator interface {
	Submit(ctx context.Context, conversationID, query string) (*searchservice.Turn, error)
}

// Handler serves the AI search endpoint.
type Handler struct {
	orchestrator Orchestrator // nil when the completion service is not configured
}

// New creates the search handler.
func New(orchestrator Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

// RegisterRoutes mounts the search endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/search", h.handleSearch)
	r.Get("/search", h.handleDescribe)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query          string `json:"query"`
		ConversationID string `json:"conversationId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Query is required and must be a string")
		return
	}

	if strings.TrimSpace(payload.Query) == "" {
		utils.RespondError(w, http.StatusBadRequest, "Query is required and must be a string")
		return
	}

	if h.orchestrator == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "ai search unavailable")
		return
	}

	turn, err := h.orchestrator.Submit(r.Context(), payload.ConversationID, payload.Query)
	if err != nil {
		switch {
		case errors.Is(err, searchservice.ErrEmptyQuery):
			utils.RespondError(w, http.StatusBadRequest, "Query is required and must be a string")
		case errors.Is(err, searchservice.ErrInFlight):
			utils.RespondError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondErrorDetails(w, http.StatusInternalServerError, "Failed to process search query", err.Error())
		}
		return
	}

	srcs := turn.Sources
	if srcs == nil {
		srcs = []searchmodel.Source{}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"query":             turn.Query,
		"answer":            turn.Answer,
		"sources":           srcs,
		"followupQuestions": turn.FollowupQuestions,
		"timestamp":         turn.Timestamp.Format(time.RFC3339),
		"conversationId":    turn.ConversationID,
	})
}

func (h *Handler) handleDescribe(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Search API endpoint. Use POST method to search.",
		"endpoints": map[string]string{
			"POST": "/search - Search for information with AI-powered answers",
		},
	})
}
