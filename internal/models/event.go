package models

import "time"

// Event represents a loggable action in the system, e.g. a new post or comment.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "post.created", "comment.created"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	PostID    *string   `json:"postId,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"createdAt"`
}
