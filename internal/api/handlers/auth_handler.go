package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/auth"
	"github.com/pkowalczyk/clean-blog-be/internal/services"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users services.UserServiceProvider
	codec *auth.Codec
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, codec *auth.Codec) *AuthHandler {
	return &AuthHandler{users: users, codec: codec}
}

// TokenResponse is the body returned on a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles new user registration from form fields.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	avatarURL := r.PostFormValue("avatar_url")

	if name == "" || email == "" || password == "" {
		http.Error(w, "name, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.Register(name, email, password, avatarURL)
	if err != nil {
		log.Warn().Err(err).Str("email", email).Msg("Failed to register user")
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// Token handles user authentication and issues a bearer token. The token is
// returned in the body and also set as an httpOnly cookie so browser clients
// keep working without storing it themselves.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := h.users.Authenticate(username, password)
	if err != nil {
		log.Warn().Str("username", username).Msg("Failed authentication attempt")
		w.Header().Set("WWW-Authenticate", "Bearer")
		http.Error(w, auth.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	token, err := h.codec.Issue(user.Name)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "Bearer " + token,
		Expires:  time.Now().Add(h.codec.TTL()),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout clears the auth cookies and sends the client home. Issued tokens
// stay valid until they expire; there is no server-side revocation.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// access_token plus the legacy cookie names older clients may still hold.
	for _, name := range []string{auth.AccessTokenCookie, "Authorization", "session"} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	// sanitize
	sanitized := *user
	sanitized.PasswordHash = ""

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitized)
}
