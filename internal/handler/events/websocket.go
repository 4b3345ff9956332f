package events

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/openscout/scout/internal/store"
)

// Handler streams store mutation events to websocket subscribers so a UI can
// stay reactive to server-side state, including placeholders resolving.
type Handler struct {
	feed     *store.Feed
	upgrader websocket.Upgrader
}

// New creates the events handler.
func New(feed *store.Feed) *Handler {
	return &Handler{
		feed: feed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	messages, err := h.feed.Subscribe(ctx)
	if err != nil {
		log.Printf("[events] subscribe failed: %v", err)
		return
	}

	// Drain client frames so close and ping frames are processed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Printf("[events] subscriber connected from %s", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			writeErr := conn.WriteMessage(websocket.TextMessage, msg.Payload)
			msg.Ack()
			if writeErr != nil {
				log.Printf("[events] write failed: %v", writeErr)
				return
			}
		}
	}
}
