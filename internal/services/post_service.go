package services

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/models"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	GetAllPosts() ([]models.Post, error)
	GetPostByID(id string) (models.Post, error)
	GetPostOwner(postID string) (string, error)
	CreatePost(post models.Post) (models.Post, error)
	UpdatePost(id string, post models.Post) (models.Post, error)
	DeletePost(id string) error
}

// PostService provides business logic for blog posts.
type PostService struct {
	db       *sql.DB
	activity ActivityServiceProvider
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB, activity ActivityServiceProvider) *PostService {
	return &PostService{db: db, activity: activity}
}

// GetAllPosts retrieves every post, newest first.
func (s *PostService) GetAllPosts() ([]models.Post, error) {
	rows, err := s.db.Query(
		"SELECT id, title, subtitle, body, img_url, author, owner_id, created_at FROM posts ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Subtitle, &post.Body,
			&post.ImgURL, &post.Author, &post.OwnerID, &post.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id string) (models.Post, error) {
	var post models.Post
	row := s.db.QueryRow(
		"SELECT id, title, subtitle, body, img_url, author, owner_id, created_at FROM posts WHERE id = ?", id)
	err := row.Scan(&post.ID, &post.Title, &post.Subtitle, &post.Body,
		&post.ImgURL, &post.Author, &post.OwnerID, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, fmt.Errorf("post with ID %s not found", id)
		}
		return models.Post{}, err
	}
	return post, nil
}

// GetPostOwner retrieves only the owner reference of a post. The ownership
// check uses this instead of loading the whole row.
func (s *PostService) GetPostOwner(postID string) (string, error) {
	var ownerID string
	row := s.db.QueryRow("SELECT owner_id FROM posts WHERE id = ?", postID)
	if err := row.Scan(&ownerID); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("post with ID %s not found", postID)
		}
		return "", err
	}
	return ownerID, nil
}

// CreatePost persists a new post and records an activity event.
func (s *PostService) CreatePost(post models.Post) (models.Post, error) {
	post.ID = uuid.New().String()

	stmt, err := s.db.Prepare(
		"INSERT INTO posts(id, title, subtitle, body, img_url, author, owner_id) VALUES(?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.Post{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(post.ID, post.Title, post.Subtitle, post.Body,
		post.ImgURL, post.Author, post.OwnerID); err != nil {
		return models.Post{}, err
	}

	if err := s.activity.RecordEvent("post.created", "info",
		fmt.Sprintf("New post %q by %s", post.Title, post.Author), &post.ID); err != nil {
		log.Warn().Err(err).Str("post_id", post.ID).Msg("Failed to record post creation event")
	}

	return s.GetPostByID(post.ID)
}

// UpdatePost overwrites an existing post's content fields. Ownership is
// enforced by the caller before this runs.
func (s *PostService) UpdatePost(id string, post models.Post) (models.Post, error) {
	stmt, err := s.db.Prepare(
		"UPDATE posts SET title = ?, subtitle = ?, body = ?, img_url = ?, author = ? WHERE id = ?")
	if err != nil {
		return models.Post{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(post.Title, post.Subtitle, post.Body, post.ImgURL, post.Author, id); err != nil {
		return models.Post{}, err
	}

	if err := s.activity.RecordEvent("post.updated", "info",
		fmt.Sprintf("Post %q updated", post.Title), &id); err != nil {
		log.Warn().Err(err).Str("post_id", id).Msg("Failed to record post update event")
	}

	return s.GetPostByID(id)
}

// DeletePost removes a post and its comments.
func (s *PostService) DeletePost(id string) error {
	res, err := s.db.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("post with ID %s not found", id)
	}

	if err := s.activity.RecordEvent("post.deleted", "info",
		fmt.Sprintf("Post %s deleted", id), nil); err != nil {
		log.Warn().Err(err).Str("post_id", id).Msg("Failed to record post deletion event")
	}
	return nil
}
