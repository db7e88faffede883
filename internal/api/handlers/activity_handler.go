package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/services"
	ws "github.com/pkowalczyk/clean-blog-be/internal/websocket"
)

// ActivityHandler serves the recent activity feed and its live websocket
// counterpart.
type ActivityHandler struct {
	hub      *ws.Hub
	activity services.ActivityServiceProvider
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(hub *ws.Hub, activity services.ActivityServiceProvider) *ActivityHandler {
	return &ActivityHandler{hub: hub, activity: activity}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// GetRecent handles the request for the latest activity events.
func (h *ActivityHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	events, err := h.activity.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		http.Error(w, "Failed to retrieve events", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

// Serve handles the WebSocket connection request. Clients on /ws get the
// global feed; clients on /ws/posts/{id} additionally get that post's
// comment events.
func (h *ActivityHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	postID := chi.URLParam(r, "id")

	client := ws.NewClient(h.hub, conn, postID)
	h.hub.Register <- client

	go client.WritePump()
	go func() {
		// The feed is one-way; anything a client sends gets an error back.
		client.ReadPump(func(c *ws.Client, message []byte) {
			c.Send <- ws.NewErrorMessage("the activity feed does not accept messages")
		})
		h.hub.Unregister <- client
	}()
}
