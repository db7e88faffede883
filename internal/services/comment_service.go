package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/models"
)

// CommentServiceProvider defines the interface for comment services.
type CommentServiceProvider interface {
	GetCommentsForPost(postID string) ([]models.Comment, error)
	CreateComment(postID, authorID, body string) (models.Comment, error)
}

// CommentService provides business logic for visitor comments.
type CommentService struct {
	db       *sql.DB
	activity ActivityServiceProvider
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *sql.DB, activity ActivityServiceProvider) *CommentService {
	return &CommentService{db: db, activity: activity}
}

// GetCommentsForPost retrieves all comments on a post, oldest first.
func (s *CommentService) GetCommentsForPost(postID string) ([]models.Comment, error) {
	rows, err := s.db.Query(
		"SELECT id, post_id, author_id, body, created_at FROM comments WHERE post_id = ? ORDER BY created_at ASC", postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.PostID, &comment.AuthorID,
			&comment.Body, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// CreateComment persists a new comment and records an activity event so
// subscribers of the post see it live.
func (s *CommentService) CreateComment(postID, authorID, body string) (models.Comment, error) {
	comment := models.Comment{
		ID:       uuid.New().String(),
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	}

	stmt, err := s.db.Prepare("INSERT INTO comments(id, post_id, author_id, body) VALUES(?, ?, ?, ?)")
	if err != nil {
		return models.Comment{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(comment.ID, comment.PostID, comment.AuthorID, comment.Body); err != nil {
		return models.Comment{}, err
	}

	if err := s.activity.RecordEvent("comment.created", "info",
		fmt.Sprintf("New comment on post %s", postID), &postID); err != nil {
		log.Warn().Err(err).Str("post_id", postID).Msg("Failed to record comment event")
	}

	return comment, nil
}
