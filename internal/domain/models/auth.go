package models

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims issued by the identity provider.
// The tenant account travels in app_metadata so a shared user can act inside
// another member's account.
type Claims struct {
	jwt.RegisteredClaims                // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string         `json:"email"`
	AppMetadata          map[string]any `json:"app_metadata"`
	Role                 string         `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// GetAccountID returns app_metadata.account_id, falling back to the subject
// for single-user accounts.
func (c *Claims) GetAccountID() string {
	if c.AppMetadata != nil {
		if id, ok := c.AppMetadata["account_id"].(string); ok && id != "" {
			return id
		}
	}
	return c.Subject
}

// Identity is the authenticated caller every tree operation runs as.
type Identity struct {
	AccountID string `json:"account_id"`
	OwnerID   string `json:"owner_id"`
	Email     string `json:"email"`
}

// Identity converts verified claims into a caller identity.
func (c *Claims) Identity() Identity {
	return Identity{
		AccountID: c.GetAccountID(),
		OwnerID:   c.GetUserID(),
		Email:     NormalizeEmail(c.Email),
	}
}

// NormalizeEmail folds an address to the form share lists are stored in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type identityContextKey string

const identityKey identityContextKey = "identity"

// WithIdentity stores the caller identity in the context
func WithIdentity(ctx context.Context, id Identity) context.Context {
	id.Email = NormalizeEmail(id.Email)
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the caller identity.
// Returns false if no identity is present or it is incomplete.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.AccountID == "" || id.OwnerID == "" {
		return Identity{}, false
	}
	return id, true
}
