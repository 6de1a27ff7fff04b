package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dossier/internal/domain"
	"dossier/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses
func handleError(w http.ResponseWriter, err error) {
	var protectedErr *domain.ProtectedResourceError
	var cycleErr *domain.CycleError

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &protectedErr):
		httputil.RespondErrorWithExtras(w, http.StatusForbidden, protectedErr.Error(), map[string]any{
			"resource_type": protectedErr.ResourceType,
			"resource_id":   protectedErr.ResourceID,
		})
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrProtectedResource):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &cycleErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, cycleErr.Error(), map[string]any{
			"folder_id": cycleErr.FolderID,
			"target_id": cycleErr.TargetID,
		})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidOperation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPayloadTooLarge):
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
