package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"dossier/internal/domain"
	"dossier/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// JWKSVerifier verifies asymmetric tokens against a remote JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier fetches the key set at jwksURL. keyfunc refreshes it in the
// background according to the endpoint's cache headers.
func NewJWKSVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWKS verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates an RS256 or ES256 token.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	return parseClaims(tokenString, v.jwks.Keyfunc, []string{"RS256", "ES256"}, v.logger)
}

// Close is a no-op; keyfunc owns its refresh goroutine.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("JWKS verifier closed")
	return nil
}

// HMACVerifier verifies HS256 tokens signed with a shared secret. Used for
// local development and by the provisioning CLI's test tokens.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a verifier for a shared secret.
func NewHMACVerifier(secret string, logger *slog.Logger) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &HMACVerifier{secret: []byte(secret), logger: logger}, nil
}

// VerifyToken validates an HS256 token.
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	keyFn := func(*jwt.Token) (any, error) { return v.secret, nil }
	return parseClaims(tokenString, keyFn, []string{"HS256"}, v.logger)
}

func (v *HMACVerifier) Close() error { return nil }

// SignHMAC issues an HS256 token for claims. Only tests and local tooling
// call it.
func SignHMAC(secret string, claims *models.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func parseClaims(tokenString string, keyFn jwt.Keyfunc, algs []string, logger *slog.Logger) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, keyFn, jwt.WithValidMethods(algs))
	if err != nil {
		logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrNotAuthenticated
	}
	if !token.Valid {
		logger.Debug("token invalid after parsing")
		return nil, domain.ErrNotAuthenticated
	}

	// Guard against algorithm confusion even if a keyfunc accepts any method.
	if !slices.Contains(algs, token.Method.Alg()) {
		logger.Warn("token uses unexpected algorithm", "algorithm", token.Method.Alg(), "allowed", algs)
		return nil, domain.ErrNotAuthenticated
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok {
		logger.Error("failed to extract claims from token")
		return nil, domain.ErrNotAuthenticated
	}

	if claims.Subject == "" {
		logger.Debug("token missing subject claim")
		return nil, domain.ErrNotAuthenticated
	}

	// Anonymous tokens carry role "anon".
	if claims.Role != "authenticated" {
		logger.Debug("token has invalid role", "role", claims.Role, "user_id", claims.Subject)
		return nil, domain.ErrNotAuthenticated
	}

	return claims, nil
}
