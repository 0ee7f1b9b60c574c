package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StreamClaims authorizes one user to open the live stream of one session.
type StreamClaims struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	jwt.RegisteredClaims
}

// GenerateStreamToken issues a short-lived token returned from session
// creation and required on the WebSocket connect.
func GenerateStreamToken(sessionID, userID string, secret []byte, ttl time.Duration) (string, error) {
	claims := StreamClaims{
		SessionID: sessionID,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateStreamToken parses and verifies a stream token.
func ValidateStreamToken(tokenString string, secret []byte) (*StreamClaims, error) {
	claims := &StreamClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
