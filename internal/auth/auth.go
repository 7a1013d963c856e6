// Package auth resolves an authenticated user identity from bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned when no identity can be resolved for a
// request. Handlers surface it as 401.
var ErrUnauthenticated = errors.New("authorization required")

// Identity is the resolved caller: an opaque stable id plus the display
// name and email used to lazily create the caller's profile.
type Identity struct {
	UserID      string
	DisplayName string
	Email       string
}

type ctxKey struct{}

// NewContext returns ctx carrying the identity.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext resolves the authenticated identity, or ErrUnauthenticated.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Tokens issues and verifies HS256 JWTs carrying an Identity.
type Tokens struct {
	secret   []byte
	duration time.Duration
}

// NewTokens constructs a token issuer/verifier.
func NewTokens(secret string, duration time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), duration: duration}
}

// Issue signs a token for the given identity.
func (t *Tokens) Issue(id Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   id.UserID,
		"name":  id.DisplayName,
		"email": id.Email,
		"exp":   time.Now().Add(t.duration).Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (t *Tokens) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}

	id := Identity{
		UserID:      stringClaim(claims, "sub"),
		DisplayName: stringClaim(claims, "name"),
		Email:       stringClaim(claims, "email"),
	}
	if id.UserID == "" {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
