package auth

import "dossier/internal/domain/models"

// TokenVerifier validates bearer tokens and returns the parsed claims.
// The middleware stays agnostic to how the signature is checked.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Any failure is reported as domain.ErrNotAuthenticated.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases resources held by the verifier.
	Close() error
}
