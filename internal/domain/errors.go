package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets the typed errors match their sentinels with errors.Is()
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrNotAuthenticated }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrProtectedResource = errors.New("protected resource")
	ErrCycleDetected     = errors.New("cycle detected")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrPayloadTooLarge   = errors.New("payload too large")
)

// ProtectedResourceError is returned when a delete targets a system folder or
// a system file. Nothing has been written when it is returned.
type ProtectedResourceError struct {
	ResourceType string // "folder" or "file"
	ResourceID   string
	Name         string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("%s %q is a system resource and cannot be deleted", e.ResourceType, e.Name)
}

// StatusCode implements the HTTPError interface
func (e *ProtectedResourceError) StatusCode() int { return http.StatusForbidden }

// Is allows errors.Is() to match against ErrProtectedResource
func (e *ProtectedResourceError) Is(target error) bool { return target == ErrProtectedResource }

// CycleError is returned when moving FolderID under TargetID would make the
// folder its own ancestor.
type CycleError struct {
	FolderID string
	TargetID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cannot move folder %s into its own descendant %s", e.FolderID, e.TargetID)
}

// StatusCode implements the HTTPError interface
func (e *CycleError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrCycleDetected
func (e *CycleError) Is(target error) bool { return target == ErrCycleDetected }

// InvalidOperationError describes a structurally nonsensical request, such as
// moving a folder into itself.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string { return e.Message }

// StatusCode implements the HTTPError interface
func (e *InvalidOperationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrInvalidOperation
func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }

// NewNotFound builds a NotFoundError for a resource type and id.
func NewNotFound(resourceType, id string) error {
	return &NotFoundError{Message: fmt.Sprintf("%s %s not found", resourceType, id)}
}
