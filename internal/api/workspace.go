package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/atolyehq/atolye/internal/fileset"
	"github.com/atolyehq/atolye/internal/log"
	"github.com/atolyehq/atolye/internal/workspace"
)

// workspaceHandler serves the per-project editing surface: file CRUD,
// undo/redo, search/replace, and project import/export.
type workspaceHandler struct {
	workspaces *workspace.Manager
	logger     log.Logger
}

// fileListResponse describes the project's files and editor state.
type fileListResponse struct {
	Files      map[string]string `json:"files"`
	Order      []string          `json:"order"`
	ActiveFile string            `json:"activeFile"`
}

func (h *workspaceHandler) store(w http.ResponseWriter, r *http.Request) (*workspace.Store, bool) {
	s, err := h.workspaces.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("loading workspace", "error", err, "project_id", r.PathValue("id"))
		writeError(w, http.StatusInternalServerError, "workspace_failed", "failed to load workspace", h.logger)
		return nil, false
	}
	return s, true
}

func (h *workspaceHandler) listFiles(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	set := s.Files()
	files := make(map[string]string, set.Len())
	for _, name := range set.Names() {
		content, _ := set.Get(name)
		files[name] = content
	}
	writeJSON(w, http.StatusOK, fileListResponse{
		Files:      files,
		Order:      set.Names(),
		ActiveFile: s.ActiveFile(),
	}, h.logger)
}

func (h *workspaceHandler) getFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if !s.Files().Has(name) {
		writeError(w, http.StatusNotFound, "not_found", "file not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    name,
		"content": s.Select(name),
		"canUndo": s.CanUndo(name),
		"canRedo": s.CanRedo(name),
	}, h.logger)
}

func (h *workspaceHandler) putFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	name := r.PathValue("name")
	s.Edit(name, req.Content)
	s.SetActiveFile(name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *workspaceHandler) selectFile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	// Commit any pending checkpoint of the buffer being left.
	s.Flush(s.ActiveFile())
	s.SetActiveFile(req.Name)
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    req.Name,
		"content": s.Select(req.Name),
	}, h.logger)
}

func (h *workspaceHandler) undo(w http.ResponseWriter, r *http.Request) {
	h.travel(w, r, (*workspace.Store).Undo)
}

func (h *workspaceHandler) redo(w http.ResponseWriter, r *http.Request) {
	h.travel(w, r, (*workspace.Store).Redo)
}

func (h *workspaceHandler) travel(w http.ResponseWriter, r *http.Request, move func(*workspace.Store, string) bool) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	moved := move(s, name)
	writeJSON(w, http.StatusOK, map[string]any{
		"moved":   moved,
		"content": s.Select(name),
		"canUndo": s.CanUndo(name),
		"canRedo": s.CanRedo(name),
	}, h.logger)
}

func (h *workspaceHandler) clear(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}
	s.Clear(r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *workspaceHandler) search(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_query", "q parameter is required", h.logger)
		return
	}
	from, _ := strconv.Atoi(q.Get("from"))

	var (
		match workspace.Match
		found bool
	)
	if q.Get("dir") == "prev" {
		match, found = s.FindPrev(query, from)
	} else {
		match, found = s.FindNext(query, from)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"found": found,
		"match": match,
	}, h.logger)
}

func (h *workspaceHandler) replace(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	var req struct {
		Query       string `json:"query"`
		Replacement string `json:"replacement"`
	}
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	count := s.ReplaceAll(req.Query, req.Replacement)
	writeJSON(w, http.StatusOK, map[string]any{
		"replaced": count,
		"content":  s.Select(s.ActiveFile()),
	}, h.logger)
}

func (h *workspaceHandler) export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	data, err := fileset.Export(s.Files())
	if err != nil {
		h.logger.Error("exporting project", "error", err)
		writeError(w, http.StatusInternalServerError, "export_failed", "failed to export project", h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="project.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("failed to write export body", "error", err)
	}
}

func (h *workspaceHandler) importProject(w http.ResponseWriter, r *http.Request) {
	s, ok := h.store(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to read request body", h.logger)
		return
	}

	set, err := fileset.Import(data)
	if err != nil {
		if errors.Is(err, fileset.ErrMalformedProject) {
			writeError(w, http.StatusBadRequest, "malformed_project", "project file is not a JSON object", h.logger)
			return
		}
		h.logger.Error("importing project", "error", err)
		writeError(w, http.StatusInternalServerError, "import_failed", "failed to import project", h.logger)
		return
	}

	s.LoadFileSet(set)
	writeJSON(w, http.StatusOK, map[string]any{
		"files":      set.Names(),
		"activeFile": s.ActiveFile(),
	}, h.logger)
}
