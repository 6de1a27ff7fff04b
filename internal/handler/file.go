package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	docsysSvc "dossier/internal/domain/services/docsystem"
	"dossier/internal/httputil"
)

// multipartOverhead is allowed on top of the upload limit for form fields
// and part headers.
const multipartOverhead = 1 << 20

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService    docsysSvc.FileService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService docsysSvc.FileService, maxUploadBytes int64, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService:    fileService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

type updateFileRequest struct {
	Name     *string             `json:"name,omitempty"`
	Users    *[]string           `json:"users,omitempty"`
	FolderID httputil.OptionalID `json:"folder_id"`
	Path     string              `json:"path,omitempty"`
}

// UploadFile stores a multipart "file" part. Optional form fields:
// folder_id and path.
// POST /api/files
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload limit")
			return
		}
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer part.Close()

	var folderID *string
	if id := r.FormValue("folder_id"); id != "" {
		folderID = &id
	}

	file, err := h.fileService.UploadFile(r.Context(), &docsysSvc.UploadFileRequest{
		Name:        header.Filename,
		FolderID:    folderID,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Content:     part,
		Path:        httputil.ViewPath(r, r.FormValue("path")),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("file uploaded", "file_id", file.ID, "size", file.Size)
	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves a file with a fetchable URL
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// UpdateFile renames, re-shares and/or moves a file
// PATCH /api/files/{id}
func (h *FileHandler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	var body updateFileRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	file, err := h.fileService.UpdateFile(r.Context(), id, &docsysSvc.UpdateFileRequest{
		Name:   body.Name,
		Users:  body.Users,
		Folder: docsysSvc.OptionalParent{Present: body.FolderID.Present, Value: body.FolderID.Value},
		Path:   httputil.ViewPath(r, body.Path),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file and its blob
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), id, httputil.ViewPath(r, "")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFiles searches the caller's files.
// Query: types (comma separated), search, sort ("name-asc"), limit
// GET /api/files
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := &docsysSvc.ListFilesQuery{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}
	for _, t := range strings.Split(q.Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			query.Types = append(query.Types, t)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		query.Limit = limit
	}

	files, err := h.fileService.ListFiles(r.Context(), query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, files)
}

// GetUsage reports storage used per file type
// GET /api/files/usage
func (h *FileHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.fileService.GetUsage(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, usage)
}

// BulkMove moves several files, skipping missing ones
// POST /api/files/move
func (h *FileHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	var body bulkRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	moved, err := h.fileService.BulkMoveFiles(r.Context(), body.IDs, emptyToNil(body.TargetID), httputil.ViewPath(r, body.Path))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bulkMoveResponse{Moved: moved})
}

// BulkDelete deletes several files, or none if any is protected
// POST /api/files/delete
func (h *FileHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var body bulkRequest
	if !parseBody(w, r, &body, false) {
		return
	}

	if err := h.fileService.BulkDeleteFiles(r.Context(), body.IDs, httputil.ViewPath(r, body.Path)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
