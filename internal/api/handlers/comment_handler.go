package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/auth"
	"github.com/pkowalczyk/clean-blog-be/internal/services"
)

// CommentHandler handles HTTP requests for comments on posts.
type CommentHandler struct {
	comments services.CommentServiceProvider
	posts    services.PostServiceProvider
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments services.CommentServiceProvider, posts services.PostServiceProvider) *CommentHandler {
	return &CommentHandler{comments: comments, posts: posts}
}

// GetForPost handles the request to list all comments on a post.
func (h *CommentHandler) GetForPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	if _, err := h.posts.GetPostByID(postID); err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	comments, err := h.comments.GetCommentsForPost(postID)
	if err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to retrieve comments")
		http.Error(w, "Failed to retrieve comments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comments)
}

// Create handles the request to leave a comment. Any logged-in user may
// comment on any post.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		http.Error(w, auth.ErrAuthenticationRequired.Error(), http.StatusUnauthorized)
		return
	}

	postID := chi.URLParam(r, "id")
	if _, err := h.posts.GetPostByID(postID); err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Body == "" {
		http.Error(w, "Comment body is required", http.StatusBadRequest)
		return
	}

	comment, err := h.comments.CreateComment(postID, user.ID, payload.Body)
	if err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("Failed to create comment")
		http.Error(w, "Failed to create comment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(comment)
}
