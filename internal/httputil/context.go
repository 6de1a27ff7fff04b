package httputil

import (
	"net/http"

	"dossier/internal/domain/models"
)

// WithIdentity attaches the authenticated caller to the request context
func WithIdentity(r *http.Request, id models.Identity) *http.Request {
	return r.WithContext(models.WithIdentity(r.Context(), id))
}

// GetIdentity retrieves the caller set by the auth middleware
func GetIdentity(r *http.Request) (models.Identity, bool) {
	return models.IdentityFromContext(r.Context())
}
