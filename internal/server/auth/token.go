package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/proofpay/internal/common"
)

// Claims carries the opaque session identifier issued at login. The wallet
// and account data for the session live server-side in the session registry;
// the token only names the registry entry.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
}

// GenerateSessionToken mints a signed HS256 token for the given session
// identifier, valid for validityDuration.
func GenerateSessionToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
	})

	return token.SignedString(secretKey)
}

// GetSessionIDFromToken parses and validates a session token and returns the
// session identifier it names.
func GetSessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.SessionID, nil
}
