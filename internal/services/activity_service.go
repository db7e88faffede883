package services

import (
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/models"
	"github.com/pkowalczyk/clean-blog-be/internal/websocket"
)

// ActivityServiceProvider defines the interface for the activity feed.
type ActivityServiceProvider interface {
	RecordEvent(eventType, level, message string, postID *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// Broadcaster is the slice of the websocket hub the activity feed pushes to.
type Broadcaster interface {
	BroadcastGlobal(message []byte)
	BroadcastTo(postID string, message []byte)
}

// ActivityService persists activity events and pushes them to connected
// websocket clients.
type ActivityService struct {
	db  *sql.DB
	hub Broadcaster
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *sql.DB, hub Broadcaster) *ActivityService {
	return &ActivityService{db: db, hub: hub}
}

// RecordEvent logs a new event to the database and broadcasts it. Events tied
// to a post also go out to that post's subscribers.
func (s *ActivityService) RecordEvent(eventType, level, message string, postID *string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		PostID:  postID,
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, post_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.PostID); err != nil {
		return err
	}

	payload, err := json.Marshal(websocket.Message{Action: "event", Payload: event})
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode event for broadcast")
		return nil
	}
	s.hub.BroadcastGlobal(payload)
	if postID != nil {
		s.hub.BroadcastTo(*postID, payload)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *ActivityService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, post_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message,
			&event.PostID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
