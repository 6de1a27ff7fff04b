package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "dossier/internal/domain/services/docsystem"
	"dossier/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService docsysSvc.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService docsysSvc.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
	Path     string  `json:"path,omitempty"`
}

type updateFolderRequest struct {
	Name     *string             `json:"name,omitempty"`
	Users    *[]string           `json:"users,omitempty"`
	ParentID httputil.OptionalID `json:"parent_id"`
	Path     string              `json:"path,omitempty"`
}

// CreateFolder creates a folder. Folders created over HTTP are never system
// folders.
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var body createFolderRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), &docsysSvc.CreateFolderRequest{
		Name:     body.Name,
		ParentID: emptyToNil(body.ParentID),
		Path:     httputil.ViewPath(r, body.Path),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder with its computed path
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// UpdateFolder renames, re-shares and/or moves a folder. parent_id null
// moves the folder to the root.
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var body updateFolderRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), id, &docsysSvc.UpdateFolderRequest{
		Name:   body.Name,
		Users:  body.Users,
		Parent: docsysSvc.OptionalParent{Present: body.ParentID.Present, Value: body.ParentID.Value},
		Path:   httputil.ViewPath(r, body.Path),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and everything beneath it
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id, httputil.ViewPath(r, "")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListChildren lists the folders and files directly inside a folder, or at
// the root when no id is given.
// GET /api/folders/{id}/children, GET /api/folders
func (h *FolderHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	var parentID *string
	if id := r.PathValue("id"); id != "" {
		parentID = &id
	}

	contents, err := h.folderService.ListChildren(r.Context(), parentID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, contents)
}

// GetBreadcrumbs returns the ancestor chain of a folder
// GET /api/folders/{id}/breadcrumbs
func (h *FolderHandler) GetBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	crumbs, err := h.folderService.GetBreadcrumbs(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, crumbs)
}

// BulkMove moves several folders, skipping those that cannot move
// POST /api/folders/move
func (h *FolderHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	var body bulkRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	moved, err := h.folderService.BulkMoveFolders(r.Context(), body.IDs, emptyToNil(body.TargetID), httputil.ViewPath(r, body.Path))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bulkMoveResponse{Moved: moved})
}

// BulkDelete deletes several folders, or none if any is protected
// POST /api/folders/delete
func (h *FolderHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var body bulkRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	if err := h.folderService.BulkDeleteFolders(r.Context(), body.IDs, httputil.ViewPath(r, body.Path)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
