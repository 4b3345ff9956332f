package conversation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openscout/scout/internal/store"
	"github.com/openscout/scout/pkg/utils"
)

// Handler exposes the conversation store over HTTP so the frontend can render
// and manage threads.
type Handler struct {
	store *store.Store
}

// New creates the conversation handler.
func New(st *store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes mounts the conversation routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/conversations", h.handleList)
	r.Post("/conversations", h.handleCreate)
	r.Get("/conversations/current", h.handleCurrent)
	r.Delete("/conversations/current", h.handleClearCurrent)
	r.Get("/conversations/{conversationID}", h.handleGet)
	r.Delete("/conversations/{conversationID}", h.handleDelete)
	r.Patch("/conversations/{conversationID}", h.handleRename)
	r.Post("/conversations/{conversationID}/activate", h.handleActivate)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstMessage string `json:"firstMessage"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.FirstMessage) == "" {
		utils.RespondError(w, http.StatusBadRequest, "firstMessage is required")
		return
	}

	id := h.store.CreateConversation(payload.FirstMessage)
	conversation, _ := h.store.Conversation(id)
	utils.RespondJSON(w, http.StatusCreated, conversation)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")
	conversation, ok := h.store.Conversation(id)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, conversation)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteConversation(chi.URLParam(r, "conversationID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRename(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	var payload struct {
		Title string `json:"title"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The store does not validate titles; blank titles are rejected here.
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	if _, ok := h.store.Conversation(id); !ok {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}

	h.store.RenameConversation(id, title)
	conversation, _ := h.store.Conversation(id)
	utils.RespondJSON(w, http.StatusOK, conversation)
}

func (h *Handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	// Soft-fail on unknown ids: navigation races are expected.
	h.store.SetCurrent(chi.URLParam(r, "conversationID"))
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"currentConversationId": h.store.CurrentID(),
	})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	conversation, ok := h.store.Current()
	if !ok {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"conversation": nil})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"conversation": conversation})
}

func (h *Handler) handleClearCurrent(w http.ResponseWriter, _ *http.Request) {
	h.store.ClearCurrent()
	w.WriteHeader(http.StatusNoContent)
}
