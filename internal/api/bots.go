package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atolyehq/atolye/internal/bot"
	"github.com/atolyehq/atolye/internal/log"
)

// maxBodyBytes bounds request bodies; file contents ride in here, so the
// limit is generous.
const maxBodyBytes = 4 << 20

// decodeBody decodes a JSON request body with a size cap. Returns false
// after writing the error response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger log.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", logger)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", logger)
		return false
	}
	return true
}

// botHandler serves the profile CRUD plus the pinned list and last-active
// tracking.
type botHandler struct {
	store  *bot.Store
	logger log.Logger
}

func (h *botHandler) list(w http.ResponseWriter, r *http.Request) {
	bots, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("listing bots", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list bots", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, bots, h.logger)
}

func (h *botHandler) create(w http.ResponseWriter, r *http.Request) {
	var b bot.Bot
	if !decodeBody(w, r, &b, h.logger) {
		return
	}
	if b.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_name", "bot name is required", h.logger)
		return
	}

	created, err := h.store.Create(r.Context(), b)
	if err != nil {
		if errors.Is(err, bot.ErrDuplicateID) {
			writeError(w, http.StatusConflict, "duplicate_id", "bot id already exists", h.logger)
			return
		}
		h.logger.Error("creating bot", "error", err)
		writeError(w, http.StatusInternalServerError, "create_failed", "failed to create bot", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, created, h.logger)
}

func (h *botHandler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bot not found", h.logger)
			return
		}
		h.logger.Error("getting bot", "error", err)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to get bot", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, b, h.logger)
}

func (h *botHandler) update(w http.ResponseWriter, r *http.Request) {
	var b bot.Bot
	if !decodeBody(w, r, &b, h.logger) {
		return
	}
	b.ID = r.PathValue("id")

	updated, err := h.store.Update(r.Context(), b)
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bot not found", h.logger)
			return
		}
		h.logger.Error("updating bot", "error", err)
		writeError(w, http.StatusInternalServerError, "update_failed", "failed to update bot", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, updated, h.logger)
}

func (h *botHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bot not found", h.logger)
			return
		}
		h.logger.Error("deleting bot", "error", err)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete bot", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *botHandler) pin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bot not found", h.logger)
			return
		}
		h.logger.Error("getting bot for pin", "error", err)
		writeError(w, http.StatusInternalServerError, "pin_failed", "failed to pin chat", h.logger)
		return
	}

	pinned, err := h.store.Pin(r.Context(), id, b.Name)
	if err != nil {
		h.logger.Error("pinning chat", "error", err)
		writeError(w, http.StatusInternalServerError, "pin_failed", "failed to pin chat", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, pinned, h.logger)
}

func (h *botHandler) pinned(w http.ResponseWriter, r *http.Request) {
	pinned, err := h.store.Pinned(r.Context())
	if err != nil {
		h.logger.Error("listing pinned chats", "error", err)
		writeError(w, http.StatusInternalServerError, "pinned_failed", "failed to list pinned chats", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, pinned, h.logger)
}

func (h *botHandler) lastActive(w http.ResponseWriter, r *http.Request) {
	id, err := h.store.LastActive(r.Context())
	if err != nil {
		h.logger.Error("getting last active bot", "error", err)
		writeError(w, http.StatusInternalServerError, "last_active_failed", "failed to get last active bot", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id}, h.logger)
}

func (h *botHandler) setLastActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if err := h.store.SetLastActive(r.Context(), req.ID); err != nil {
		h.logger.Error("setting last active bot", "error", err)
		writeError(w, http.StatusInternalServerError, "last_active_failed", "failed to set last active bot", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
