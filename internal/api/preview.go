package api

import (
	"errors"
	"net/http"

	"github.com/atolyehq/atolye/internal/bot"
	"github.com/atolyehq/atolye/internal/log"
	"github.com/atolyehq/atolye/internal/preview"
	"github.com/atolyehq/atolye/internal/workspace"
)

// previewSandbox is the policy applied to served preview documents. It is
// the server-side equivalent of the client iframe sandbox.
const previewSandbox = "sandbox allow-scripts allow-modals allow-forms allow-popups"

// previewHandler materializes and serves preview documents.
type previewHandler struct {
	bots       *bot.Store
	workspaces *workspace.Manager
	handles    *preview.Handles
	logger     log.Logger
}

// materialize builds the preview for a project's current file set and
// returns a fresh token. The project's previous handle is revoked.
func (h *previewHandler) materialize(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b, err := h.bots.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bot not found", h.logger)
			return
		}
		h.logger.Error("getting bot for preview", "error", err)
		writeError(w, http.StatusInternalServerError, "preview_failed", "failed to build preview", h.logger)
		return
	}
	if !b.Has(bot.CapPreviewCode) {
		writeError(w, http.StatusForbidden, "capability_disabled", "code preview is disabled for this bot", h.logger)
		return
	}

	s, err := h.workspaces.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("loading workspace for preview", "error", err, "project_id", id)
		writeError(w, http.StatusInternalServerError, "preview_failed", "failed to build preview", h.logger)
		return
	}

	doc := h.handles.Materialize(id, preview.Build(s.Files()))
	writeJSON(w, http.StatusOK, map[string]string{
		"token": doc.Token,
		"url":   "/preview/" + doc.Token,
	}, h.logger)
}

// release revokes a project's live handle.
func (h *previewHandler) release(w http.ResponseWriter, r *http.Request) {
	h.handles.ReleaseProject(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// serve returns the materialized document for a live token. Revoked and
// superseded tokens 404.
func (h *previewHandler) serve(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.handles.Get(r.PathValue("token"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", previewSandbox)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(doc.HTML)); err != nil {
		h.logger.Debug("failed to write preview body", "error", err)
	}
}
