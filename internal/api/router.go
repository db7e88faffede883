package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pkowalczyk/clean-blog-be/internal/api/handlers"
	"github.com/pkowalczyk/clean-blog-be/internal/auth"
	"github.com/pkowalczyk/clean-blog-be/internal/services"
	"github.com/pkowalczyk/clean-blog-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	gate *auth.Gate,
	codec *auth.Codec,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
	commentService services.CommentServiceProvider,
	activityService services.ActivityServiceProvider,
	allowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, codec)
	postHandler := handlers.NewPostHandler(postService)
	commentHandler := handlers.NewCommentHandler(commentService, postService)
	activityHandler := handlers.NewActivityHandler(hub, activityService)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket feeds
		r.Get("/ws", activityHandler.Serve)
		r.Get("/ws/posts/{id}", activityHandler.Serve)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/token", authHandler.Token)
			r.Get("/logout", authHandler.Logout)
			r.With(gate.RequireUser).Get("/me", authHandler.Me)
		})

		r.Route("/posts", func(r chi.Router) {
			r.With(gate.WithPrincipal).Get("/", postHandler.GetAll)
			r.With(gate.RequireUser).Post("/", postHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", postHandler.Get)
				r.With(gate.RequireUser, gate.RequireOwner).Put("/", postHandler.Update)
				r.With(gate.RequireUser, gate.RequireOwner).Delete("/", postHandler.Delete)

				r.Get("/comments", commentHandler.GetForPost)
				r.With(gate.RequireUser).Post("/comments", commentHandler.Create)
			})
		})

		r.Get("/events", activityHandler.GetRecent)
	})

	return r
}
