package api

import (
	"net/http"

	"github.com/atolyehq/atolye/internal/log"
)

// healthHandler answers liveness probes.
type healthHandler struct {
	logger log.Logger
}

func (h *healthHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}
