package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/pkowalczyk/clean-blog-be/internal/models"
)

// AccessTokenCookie is the cookie carrying the bearer token for browser
// clients. Its value uses the same "Bearer <token>" form as the header.
const AccessTokenCookie = "access_token"

// PrincipalKind enumerates the possible identity outcomes for one request.
type PrincipalKind int

const (
	// Anonymous means the request carried no usable token.
	Anonymous PrincipalKind = iota
	// Expired means the request carried a well-signed token past its expiry.
	// Distinct from Anonymous: callers redirect to login rather than
	// silently treating the request as a guest.
	Expired
	// Authenticated means the token verified and resolved to a stored user.
	Authenticated
)

// Principal is the resolved identity for one request. User is set only when
// Kind is Authenticated.
type Principal struct {
	Kind PrincipalKind
	User *models.User
}

// UserLookup is the narrow slice of the user store the resolver needs.
type UserLookup interface {
	GetUserByName(name string) (models.User, error)
}

// Resolver maps inbound requests to principals.
type Resolver struct {
	codec *Codec
	users UserLookup
}

// NewResolver creates a Resolver decoding with codec and resolving subjects
// against users.
func NewResolver(codec *Codec, users UserLookup) *Resolver {
	return &Resolver{codec: codec, users: users}
}

// ExtractRawToken pulls the bearer token out of a request. The Authorization
// header is consulted first and wins over the cookie when both are present.
// Returns "" when neither transport carries a bearer token.
func ExtractRawToken(r *http.Request) string {
	// 1. Try the Authorization header
	if token := stripBearer(r.Header.Get("Authorization")); token != "" {
		return token
	}

	// 2. Fall back to the access_token cookie set at login
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return stripBearer(cookie.Value)
}

// stripBearer removes a leading "Bearer " scheme, case-insensitively. A value
// without the scheme is not a bearer token and yields "".
func stripBearer(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Resolve determines the identity behind a request.
//
// The outcomes are deliberately asymmetric: an expired token is a soft state
// the caller special-cases, a malformed token or a subject pointing at a
// vanished user is a hard error, and any decode failure not classified as
// either is swallowed and treated as anonymous access.
func (rv *Resolver) Resolve(r *http.Request) (Principal, error) {
	raw := ExtractRawToken(r)
	if raw == "" {
		return Principal{Kind: Anonymous}, nil
	}

	claims, err := rv.codec.Decode(raw)
	switch {
	case err == nil:
		// fall through to the subject lookup
	case errors.Is(err, ErrTokenExpired):
		return Principal{Kind: Expired}, nil
	case errors.Is(err, ErrTokenMalformed):
		return Principal{}, ErrTokenMalformed
	default:
		// Unclassified decode failures degrade to anonymous access.
		return Principal{Kind: Anonymous}, nil
	}

	if claims.Subject == "" {
		return Principal{}, ErrTokenMalformed
	}

	user, err := rv.users.GetUserByName(claims.Subject)
	if err != nil {
		// A valid token naming a user that no longer exists. Store errors
		// land here too; they are indistinguishable from a missing row on
		// purpose.
		return Principal{}, ErrUserNotFound
	}

	return Principal{Kind: Authenticated, User: &user}, nil
}

// ResolveRequired is the strict variant of Resolve: anonymous access becomes
// ErrAuthenticationRequired. An expired principal is passed through unchanged
// for the caller to special-case.
func (rv *Resolver) ResolveRequired(r *http.Request) (Principal, error) {
	principal, err := rv.Resolve(r)
	if err != nil {
		return Principal{}, err
	}
	if principal.Kind == Anonymous {
		return Principal{}, ErrAuthenticationRequired
	}
	return principal, nil
}
