// Package auth consumes the identity assertion attached to each request.
//
// Credential checking and token issuance live with the external identity
// service; this package shares its HS256 secret and only validates the JWTs
// it mints. A valid token yields the principal's user id, which is all the
// rest of the application ever needs for ownership and visibility checks.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the value the identity service writes into the "iss" claim.
// Tokens from any other issuer are rejected.
const Issuer = "snippetify-identity"

// TokenService validates identity assertions. It can also mint tokens with
// the shared secret — used by tests and local development, where no separate
// identity service is running.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the shared HS256 secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the principal id rides in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Generate mints a one-hour assertion for the given user id, matching the
// shape the identity service produces.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, time.Hour)
}

// GenerateWithDuration mints an assertion with a custom lifetime.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies an assertion, returning the principal's
// user id from the "sub" claim.
//
// Restricting the accepted algorithms to HS256 closes the algorithm
// confusion hole where a token signed with "none" slips through.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	userID := c.Subject
	if userID == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}
	return userID, nil
}
