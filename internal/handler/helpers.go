package handler

import (
	"errors"
	"io"
	"net/http"

	"dossier/internal/httputil"
)

// PathParam reads a required path segment, writing a 400 when it is empty
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}

// parseBody decodes a JSON body, writing a 400 on failure. With optional
// set an empty body is accepted and dest keeps its zero value.
func parseBody(w http.ResponseWriter, r *http.Request, dest any, optional bool) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// bulkRequest is the body of every bulk move/delete endpoint
type bulkRequest struct {
	IDs      []string `json:"ids"`
	TargetID *string  `json:"target_id,omitempty"` // nil = root, moves only
	Path     string   `json:"path,omitempty"`
}

type bulkMoveResponse struct {
	Moved int `json:"moved"`
}

// emptyToNil treats "" the same as an absent id
func emptyToNil(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
