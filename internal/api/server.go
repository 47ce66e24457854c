package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atolyehq/atolye/internal/bot"
	"github.com/atolyehq/atolye/internal/chat"
	"github.com/atolyehq/atolye/internal/preview"
	"github.com/atolyehq/atolye/internal/workspace"
)

// ServerConfig contains dependencies for creating the API server.
type ServerConfig struct {
	Logger     *slog.Logger
	Bots       *bot.Store         // Required
	Workspaces *workspace.Manager // Required
	Handles    *preview.Handles   // Required
	Producer   chat.Producer      // Required

	CORSOrigins []string
	TrustProxy  bool
	RateRPS     float64 // 0 = 10 tokens/sec
	RateBurst   int     // 0 = 30
}

// Server is the studio HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Bots == nil {
		return nil, errors.New("bot store is required")
	}
	if cfg.Workspaces == nil {
		return nil, errors.New("workspace manager is required")
	}
	if cfg.Handles == nil {
		return nil, errors.New("preview handle registry is required")
	}
	if cfg.Producer == nil {
		return nil, errors.New("chat producer is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bh := &botHandler{store: cfg.Bots, logger: logger}
	wh := &workspaceHandler{workspaces: cfg.Workspaces, logger: logger}
	ph := &previewHandler{bots: cfg.Bots, workspaces: cfg.Workspaces, handles: cfg.Handles, logger: logger}
	ch := &chatHandler{bots: cfg.Bots, workspaces: cfg.Workspaces, producer: cfg.Producer, logger: logger}

	mux := http.NewServeMux()

	// Bot profiles
	mux.HandleFunc("GET /api/v1/bots", bh.list)
	mux.HandleFunc("POST /api/v1/bots", bh.create)
	mux.HandleFunc("GET /api/v1/bots/{id}", bh.get)
	mux.HandleFunc("PATCH /api/v1/bots/{id}", bh.update)
	mux.HandleFunc("DELETE /api/v1/bots/{id}", bh.delete)
	mux.HandleFunc("POST /api/v1/bots/{id}/pin", bh.pin)
	mux.HandleFunc("GET /api/v1/pinned", bh.pinned)
	mux.HandleFunc("GET /api/v1/last-active", bh.lastActive)
	mux.HandleFunc("PUT /api/v1/last-active", bh.setLastActive)

	// Workspace
	mux.HandleFunc("GET /api/v1/bots/{id}/files", wh.listFiles)
	mux.HandleFunc("GET /api/v1/bots/{id}/files/{name}", wh.getFile)
	mux.HandleFunc("PUT /api/v1/bots/{id}/files/{name}", wh.putFile)
	mux.HandleFunc("POST /api/v1/bots/{id}/select", wh.selectFile)
	mux.HandleFunc("POST /api/v1/bots/{id}/files/{name}/undo", wh.undo)
	mux.HandleFunc("POST /api/v1/bots/{id}/files/{name}/redo", wh.redo)
	mux.HandleFunc("POST /api/v1/bots/{id}/files/{name}/clear", wh.clear)
	mux.HandleFunc("GET /api/v1/bots/{id}/search", wh.search)
	mux.HandleFunc("POST /api/v1/bots/{id}/replace", wh.replace)
	mux.HandleFunc("GET /api/v1/bots/{id}/export", wh.export)
	mux.HandleFunc("POST /api/v1/bots/{id}/import", wh.importProject)

	// Preview
	mux.HandleFunc("POST /api/v1/bots/{id}/preview", ph.materialize)
	mux.HandleFunc("DELETE /api/v1/bots/{id}/preview", ph.release)

	// Chat
	mux.HandleFunc("POST /api/v1/bots/{id}/chat", ch.send)

	rps := cfg.RateRPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 30
	}
	rl := newRateLimiter(rps, burst)

	// Middleware stack (outermost first):
	//   Recovery → Logging → CORS → RateLimit → Routes
	// CORS sits before RateLimit so preflight OPTIONS gets proper headers.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Preview documents and health probes bypass the API middleware: the
	// preview carries its own sandbox policy, and probes should never be
	// rate limited.
	hh := &healthHandler{logger: logger}
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /healthz", hh.healthz)
	topMux.HandleFunc("GET /preview/{token}", ph.serve)
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
