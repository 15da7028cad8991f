// Package jwks validates bearer tokens issued by the external identity
// provider against its published JSON Web Key Set. Validation fails
// closed: any fetch, parse, or signature problem yields an error, never a
// partially trusted identity.
package jwks

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token has no user id")
)

// Claims are the claims this service cares about. The provider sets
// user_id; sub is the fallback.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Validator verifies tokens against a remote key set, refreshed in the
// background.
type Validator struct {
	jwks *keyfunc.JWKS
}

// NewValidator fetches the key set from jwksURL and keeps it refreshed.
func NewValidator(jwksURL string, refreshRate time.Duration) (*Validator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               context.Background(),
		RefreshInterval:   refreshRate,
		RefreshRateLimit:  time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Printf("WARN: JWKS refresh failed: %v", err)
		},
	})
	if err != nil {
		return nil, err
	}
	return &Validator{jwks: jwks}, nil
}

// Validate parses and verifies the token and returns the user ID it
// identifies.
func (v *Validator) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.jwks.Keyfunc)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", ErrNoSubject
	}
	return userID, nil
}
