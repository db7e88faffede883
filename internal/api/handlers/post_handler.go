package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/auth"
	"github.com/pkowalczyk/clean-blog-be/internal/models"
	"github.com/pkowalczyk/clean-blog-be/internal/services"
)

// PostHandler handles HTTP requests related to blog posts.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// PostListResponse carries the post list plus the viewer's login state, so
// the client can render edit controls without a second round trip.
type PostListResponse struct {
	Posts    []models.Post `json:"posts"`
	LoggedIn bool          `json:"loggedIn"`
	Viewer   *models.User  `json:"viewer,omitempty"`
}

// GetAll handles the request to list all posts. It runs behind the lenient
// principal middleware: an expired token shows the list as a guest.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetAllPosts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve posts")
		http.Error(w, "Failed to retrieve posts", http.StatusInternalServerError)
		return
	}

	resp := PostListResponse{Posts: posts}
	if user, ok := auth.CurrentUser(r.Context()); ok {
		viewer := *user
		viewer.PasswordHash = ""
		resp.LoggedIn = true
		resp.Viewer = &viewer
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get handles the request to get a single post by its ID.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.service.GetPostByID(id)
	if err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// Create handles the request to publish a new post. The owner is always the
// authenticated user, whatever the body claims.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		http.Error(w, auth.ErrAuthenticationRequired.Error(), http.StatusUnauthorized)
		return
	}

	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if post.Title == "" || post.Body == "" {
		http.Error(w, "title and body are required", http.StatusBadRequest)
		return
	}

	post.OwnerID = user.ID
	if post.Author == "" {
		post.Author = user.Name
	}

	created, err := h.service.CreatePost(post)
	if err != nil {
		log.Error().Err(err).Str("title", post.Title).Msg("Failed to create post")
		http.Error(w, "Failed to create post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// Update handles the request to edit an existing post. Ownership is enforced
// by the gate before this handler runs.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var post models.Post
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdatePost(id, post)
	if err != nil {
		log.Error().Err(err).Str("post_id", id).Msg("Failed to update post")
		http.Error(w, "Failed to update post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete handles the request to remove a post. Ownership is enforced by the
// gate before this handler runs.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeletePost(id); err != nil {
		http.Error(w, "Post not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
