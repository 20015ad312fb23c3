// Package token issues and validates the JWT access tokens used by the
// admin API.
package token

import (
	"errors"
	"time"

	"pulsecapture_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired marks a structurally valid but expired token.
	ErrExpired = errors.New("token expired")
	// ErrInvalid marks a malformed, tampered or otherwise unusable token.
	ErrInvalid = errors.New("token invalid")
)

// Issue signs a token for the given user.
func Issue(cfg config.JWTConfig, userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID.String(),
		"iat":    now.Unix(),
		"exp":    now.Add(cfg.GetJWTTTL()).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.GetJWTSecret()))
}

// Parse validates a token and returns the embedded user ID. Expired tokens
// are reported distinctly so the API can tell clients to re-authenticate.
func Parse(cfg config.JWTConfig, raw string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return []byte(cfg.GetJWTSecret()), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpired
		}
		return uuid.Nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, ErrInvalid
	}

	rawID, _ := claims["userId"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, ErrInvalid
	}
	return userID, nil
}
