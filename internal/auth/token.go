package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the token payload: the username in the standard "sub" claim
// plus the registered expiry.
type Claims struct {
	jwt.RegisteredClaims
}

// Codec issues and decodes signed access tokens. It is stateless apart from
// the secret and TTL fixed at construction, so it is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec creates a Codec signing with the given secret. ttl is how long
// issued tokens stay valid.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue creates a signed HS256 token for the given username, expiring after
// the Codec's TTL.
func (c *Codec) Issue(username string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies the token's signature and expiry and returns its claims.
// An unexpired, well-signed token decodes cleanly. A well-signed token past
// its expiry returns ErrTokenExpired. Anything else, including a tampered
// token whose encoded expiry lies in the future, returns ErrTokenMalformed:
// the signature is checked before the expiry, so tampering is never
// misreported as mere expiry.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
