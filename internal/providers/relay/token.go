package relay

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var errMissingPublicKey = errors.New("public key missing")

// bearerToken returns the credential sent in the Authorization header.
// Without a secret the public key itself is the bearer.
func bearerToken(publicKey string, secret string, ttl time.Duration, now time.Time) (string, error) {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return "", errMissingPublicKey
	}
	if secret == "" {
		return publicKey, nil
	}

	claims := jwt.RegisteredClaims{
		Subject:   publicKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
