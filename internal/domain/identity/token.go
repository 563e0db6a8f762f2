package identity

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const tokenIssuer = "mobility"

type sessionClaims struct {
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies session tokens. A token only names a session;
// role and closure live in the session store.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a codec using an HMAC secret.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret required")
	}
	return &TokenCodec{secret: []byte(secret)}, nil
}

// Issue signs a token for sess.
func (c *TokenCodec) Issue(sess Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		DisplayName: sess.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.ActorID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the session and actor it names.
func (c *TokenCodec) Parse(raw string) (sessionID, actorID string, err error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.ID == "" || claims.Subject == "" || claims.Issuer != tokenIssuer {
		return "", "", ErrInvalidToken
	}
	return claims.ID, claims.Subject, nil
}
