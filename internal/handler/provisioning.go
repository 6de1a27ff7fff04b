package handler

import (
	"context"
	"log/slog"
	"net/http"

	docsysSvc "dossier/internal/domain/services/docsystem"
	"dossier/internal/httputil"
	"dossier/internal/templates"
)

// ProvisioningHandler exposes template provisioning
type ProvisioningHandler struct {
	provisioner docsysSvc.Provisioner
	registry    *templates.Registry
	logger      *slog.Logger
}

// NewProvisioningHandler creates a new provisioning handler
func NewProvisioningHandler(provisioner docsysSvc.Provisioner, registry *templates.Registry, logger *slog.Logger) *ProvisioningHandler {
	return &ProvisioningHandler{
		provisioner: provisioner,
		registry:    registry,
		logger:      logger,
	}
}

type phaseRequest struct {
	Path string `json:"path,omitempty"`
}

type templateRequest struct {
	ParentID *string `json:"parent_id,omitempty"`
	Path     string  `json:"path,omitempty"`
}

type templateSummary struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Phased  bool   `json:"phased"`
	Folders int    `json:"folders"`
}

// Status derives the caller's provisioning state
// GET /api/provisioning/status
func (h *ProvisioningHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.provisioner.Status(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Phase1 ensures the skeleton root and the first modules. The body is
// optional.
// POST /api/provisioning/phase1
func (h *ProvisioningHandler) Phase1(w http.ResponseWriter, r *http.Request) {
	h.runPhase(w, r, h.provisioner.Phase1)
}

// Phase2 ensures the remaining modules
// POST /api/provisioning/phase2
func (h *ProvisioningHandler) Phase2(w http.ResponseWriter, r *http.Request) {
	h.runPhase(w, r, h.provisioner.Phase2)
}

func (h *ProvisioningHandler) runPhase(w http.ResponseWriter, r *http.Request, phase func(ctx context.Context, path string) (*docsysSvc.ProvisionResult, error)) {
	var body phaseRequest
	if !parseBody(w, r, &body, true) {
		return
	}

	result, err := phase(r.Context(), httputil.ViewPath(r, body.Path))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListTemplates lists the available templates
// GET /api/templates
func (h *ProvisioningHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	keys := h.registry.Keys()
	summaries := make([]templateSummary, 0, len(keys))
	for _, key := range keys {
		tmpl, err := h.registry.Get(key)
		if err != nil {
			continue
		}
		summaries = append(summaries, templateSummary{
			Key:     tmpl.Key,
			Title:   tmpl.Title,
			Phased:  tmpl.PhaseCount() > 0,
			Folders: tmpl.Root.Count(),
		})
	}

	httputil.RespondJSON(w, http.StatusOK, summaries)
}

// ProvisionTemplate creates a fresh copy of a secondary template
// POST /api/templates/{key}
func (h *ProvisioningHandler) ProvisionTemplate(w http.ResponseWriter, r *http.Request) {
	key, ok := PathParam(w, r, "key", "Template key")
	if !ok {
		return
	}

	var body templateRequest
	if !parseBody(w, r, &body, true) {
		return
	}

	result, err := h.provisioner.ProvisionTemplate(r.Context(), key, emptyToNil(body.ParentID), httputil.ViewPath(r, body.Path))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, result)
}
