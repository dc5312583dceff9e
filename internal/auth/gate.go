// Package auth verifies session tokens and turns them into editing capabilities.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"article_cms/internal/domain"
)

const (
	RoleEditor = "editor"
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// CanWrite reports whether the role may create, edit or delete articles.
func (c *Claims) CanWrite() bool {
	switch c.Role {
	case RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// Gate validates HS256-signed session tokens.
type Gate struct {
	secret []byte
	issuer string
	logger *slog.Logger
}

func NewGate(secret, issuer string, logger *slog.Logger) (*Gate, error) {
	if secret == "" {
		return nil, errors.New("session secret cannot be empty")
	}
	return &Gate{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger.With("component", "auth"),
	}, nil
}

// Authorize parses a bearer token. An empty token yields the anonymous, read-only
// capability; a present but invalid token is an UnauthorizedError.
func (g *Gate) Authorize(_ context.Context, token string) (domain.Capability, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Capability{}, nil
	}

	claims, err := g.Verify(token)
	if err != nil {
		return domain.Capability{}, err
	}

	return domain.Capability{
		Subject: claims.Subject,
		Write:   claims.CanWrite(),
	}, nil
}

// Verify validates signature, algorithm, issuer, expiry and subject.
func (g *Gate) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, g.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(g.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		g.logger.Debug("session token rejected", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid session token"}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid session token"}
	}
	if claims.Subject == "" {
		return nil, &domain.UnauthorizedError{Message: "session token has no subject"}
	}

	return claims, nil
}

// Issue signs a session token for subject with the given role and lifetime.
func (g *Gate) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    g.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (g *Gate) key(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
	return g.secret, nil
}
