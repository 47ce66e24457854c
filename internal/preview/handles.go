package preview

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrHandleNotFound is returned when a token does not name a live handle.
var ErrHandleNotFound = errors.New("preview handle not found")

// Document is a materialized preview behind a revocable token.
type Document struct {
	Token     string
	ProjectID string
	HTML      string
	CreatedAt time.Time
}

// Handles is the registry of live preview documents. At most one handle is
// live per project: materializing a new preview releases the predecessor,
// so handles never accumulate across a session.
//
// Handles is safe for concurrent use.
type Handles struct {
	mu        sync.Mutex
	byProject map[string]string
	docs      map[string]*Document
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandles creates an empty registry.
func NewHandles(logger *slog.Logger) *Handles {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handles{
		byProject: make(map[string]string),
		docs:      make(map[string]*Document),
		logger:    logger,
		now:       time.Now,
	}
}

// Materialize registers html under a fresh token for the project and
// releases the project's previous handle. A failed release of the stale
// handle is logged, not escalated — it is superseded regardless.
func (h *Handles) Materialize(projectID, html string) *Document {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev, ok := h.byProject[projectID]; ok {
		if err := h.releaseLocked(prev); err != nil {
			h.logger.Warn("failed to release stale preview handle",
				"project_id", projectID, "token", prev, "error", err)
		}
	}

	doc := &Document{
		Token:     uuid.NewString(),
		ProjectID: projectID,
		HTML:      html,
		CreatedAt: h.now(),
	}
	h.byProject[projectID] = doc.Token
	h.docs[doc.Token] = doc
	return doc
}

// Get returns the live document for a token.
func (h *Handles) Get(token string) (*Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	doc, ok := h.docs[token]
	return doc, ok
}

// Release revokes a token. Releasing an unknown token returns
// ErrHandleNotFound.
func (h *Handles) Release(token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releaseLocked(token)
}

func (h *Handles) releaseLocked(token string) error {
	doc, ok := h.docs[token]
	if !ok {
		return ErrHandleNotFound
	}
	delete(h.docs, token)
	if h.byProject[doc.ProjectID] == token {
		delete(h.byProject, doc.ProjectID)
	}
	return nil
}

// ReleaseProject revokes the project's live handle, if any. Used on
// teardown of the hosting view.
func (h *Handles) ReleaseProject(projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if token, ok := h.byProject[projectID]; ok {
		if err := h.releaseLocked(token); err != nil {
			h.logger.Warn("failed to release preview handle",
				"project_id", projectID, "token", token, "error", err)
		}
	}
}

// Live reports the number of live handles, for tests and stats.
func (h *Handles) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.docs)
}
