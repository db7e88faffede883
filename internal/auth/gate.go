package auth

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pkowalczyk/clean-blog-be/internal/models"
)

type contextKey string

// principalKey is the context key under which the gate stores the resolved
// principal for downstream handlers.
const principalKey = contextKey("principal")

// LoginRedirectURL is where requests with an expired token are sent instead
// of receiving an error page.
const LoginRedirectURL = "/login?error=True"

// PostOwnerLookup is the collaborator the ownership check consults. It is the
// only thing the gate knows about posts.
type PostOwnerLookup interface {
	GetPostOwner(postID string) (string, error)
}

// Gate wraps protected handlers with authentication and ownership policies.
type Gate struct {
	resolver *Resolver
	posts    PostOwnerLookup
}

// NewGate creates a Gate resolving identities with resolver and checking
// ownership against posts.
func NewGate(resolver *Resolver, posts PostOwnerLookup) *Gate {
	return &Gate{resolver: resolver, posts: posts}
}

// CurrentPrincipal returns the principal stored by the gate middleware, or an
// anonymous principal when none was stored.
func CurrentPrincipal(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey).(Principal); ok {
		return p
	}
	return Principal{Kind: Anonymous}
}

// CurrentUser returns the authenticated user stored by the gate middleware.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	p := CurrentPrincipal(ctx)
	if p.Kind != Authenticated {
		return nil, false
	}
	return p.User, true
}

// WithPrincipal resolves the request's identity without demanding one. Public
// pages use it to render a logged-in state when available: an expired token
// counts as logged out here, never as an error. Hard failures (malformed
// tokens, vanished users) still reject the request.
func (g *Gate) WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.resolver.Resolve(r)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}
		if principal.Kind == Expired {
			principal = Principal{Kind: Anonymous}
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// RequireUser admits only authenticated requests. An expired token redirects
// to the login flow rather than failing; everything else that is not a valid
// logged-in identity is rejected with a 401 and a bearer challenge.
func (g *Gate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.resolver.ResolveRequired(r)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}
		if principal.Kind == Expired {
			http.Redirect(w, r, LoginRedirectURL, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// RequireOwner admits the request only when the authenticated user owns the
// post named by the {id} URL parameter. It must run after RequireUser.
//
// A mismatch answers 401 rather than 403; the client treats both as "log in
// as the right user".
func (g *Gate) RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r.Context())
		if !ok {
			unauthorized(w, ErrAuthenticationRequired.Error())
			return
		}

		postID := chi.URLParam(r, "id")
		ownerID, err := g.posts.GetPostOwner(postID)
		if err != nil {
			http.Error(w, "Post not found", http.StatusNotFound)
			return
		}

		if ownerID != user.ID {
			log.Warn().
				Str("user_id", user.ID).
				Str("post_id", postID).
				Msg("Ownership check failed")
			unauthorized(w, ErrAuthorizationDenied.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// unauthorized writes a 401 with the bearer challenge expected by clients.
func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, detail, http.StatusUnauthorized)
}
