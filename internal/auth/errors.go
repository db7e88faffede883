package auth

import "errors"

// Sentinel errors for the authentication and authorization flow.
var (
	// ErrInvalidCredentials is returned when a login attempt carries a wrong
	// username or password. Deliberately generic so callers cannot tell which.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrTokenExpired marks a token whose signature verified but whose expiry
	// has passed. Soft failure: callers redirect to login instead of erroring.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed marks a token that failed signature verification or
	// could not be parsed at all. Hard failure.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrUserNotFound is returned when a decoded token names a user that no
	// longer exists in the store. Hard failure.
	ErrUserNotFound = errors.New("user from token not found")

	// ErrAuthenticationRequired is returned when an operation demands a
	// logged-in user and the request carries no usable identity.
	ErrAuthenticationRequired = errors.New("an authenticated user is required for that action")

	// ErrAuthorizationDenied is returned when an authenticated user attempts
	// to mutate a resource owned by someone else.
	ErrAuthorizationDenied = errors.New("not the owner of this resource")
)
