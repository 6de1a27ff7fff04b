package handler

import (
	"log/slog"
	"net/http"

	"dossier/internal/auth"
	"dossier/internal/middleware"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Folder       *FolderHandler
	File         *FileHandler
	Tree         *TreeHandler
	Provisioning *ProvisioningHandler
	Health       *HealthHandler
}

// NewRouter registers all routes and wraps them in the middleware chain.
// Order: Recovery → Auth → RequestLogger → routes. CORS is added by the
// caller.
func NewRouter(h Handlers, verifier auth.TokenVerifier, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.HealthCheck)

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folder.ListChildren)
	mux.HandleFunc("POST /api/folders", h.Folder.CreateFolder)
	mux.HandleFunc("GET /api/folders/tree", h.Tree.GetTree)
	mux.HandleFunc("POST /api/folders/move", h.Folder.BulkMove)
	mux.HandleFunc("POST /api/folders/delete", h.Folder.BulkDelete)
	mux.HandleFunc("GET /api/folders/{id}", h.Folder.GetFolder)
	mux.HandleFunc("GET /api/folders/{id}/children", h.Folder.ListChildren)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumbs", h.Folder.GetBreadcrumbs)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folder.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folder.DeleteFolder)

	// File routes
	mux.HandleFunc("GET /api/files", h.File.ListFiles)
	mux.HandleFunc("POST /api/files", h.File.UploadFile)
	mux.HandleFunc("GET /api/files/usage", h.File.GetUsage)
	mux.HandleFunc("POST /api/files/move", h.File.BulkMove)
	mux.HandleFunc("POST /api/files/delete", h.File.BulkDelete)
	mux.HandleFunc("GET /api/files/{id}", h.File.GetFile)
	mux.HandleFunc("PATCH /api/files/{id}", h.File.UpdateFile)
	mux.HandleFunc("DELETE /api/files/{id}", h.File.DeleteFile)

	// Provisioning routes
	mux.HandleFunc("GET /api/provisioning/status", h.Provisioning.Status)
	mux.HandleFunc("POST /api/provisioning/phase1", h.Provisioning.Phase1)
	mux.HandleFunc("POST /api/provisioning/phase2", h.Provisioning.Phase2)
	mux.HandleFunc("GET /api/templates", h.Provisioning.ListTemplates)
	mux.HandleFunc("POST /api/templates/{key}", h.Provisioning.ProvisionTemplate)

	var handler http.Handler = mux
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.Auth(verifier, "/health")(handler)
	handler = middleware.Recovery(logger)(handler)
	return handler
}
