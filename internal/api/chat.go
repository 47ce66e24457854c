package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/atolyehq/atolye/internal/artifact"
	"github.com/atolyehq/atolye/internal/bot"
	"github.com/atolyehq/atolye/internal/chat"
	"github.com/atolyehq/atolye/internal/log"
	"github.com/atolyehq/atolye/internal/workspace"
)

// chatHandler streams model output over SSE, extracting closed code-fence
// artifacts from the accumulating reply as it grows.
type chatHandler struct {
	bots       *bot.Store
	workspaces *workspace.Manager
	producer   chat.Producer
	logger     log.Logger
}

type chatRequest struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history"`
}

// Event payloads. One struct per SSE event name.
type chunkEvent struct {
	Text string `json:"text"`
}

type groundingEvent struct {
	Chunks []chat.GroundingChunk `json:"chunks"`
}

type artifactEvent struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type mediaEvent struct {
	Prompt string `json:"prompt"`
	URL    string `json:"url"`
}

type doneEvent struct {
	MessageID string   `json:"messageId"`
	Text      string   `json:"text"`
	Artifacts []string `json:"artifacts"`
}

type errorEvent struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	b, err := h.bots.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "bot not found", h.logger)
			return
		}
		h.logger.Error("getting bot for chat", "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to start chat", h.logger)
		return
	}

	var req chatRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "invalid_message", "message is required", h.logger)
		return
	}

	var store *workspace.Store
	if b.Has(bot.CapPreviewCode) {
		store, err = h.workspaces.Get(r.Context(), id)
		if err != nil {
			h.logger.Error("loading workspace for chat", "error", err, "project_id", id)
			writeError(w, http.StatusInternalServerError, "chat_failed", "failed to start chat", h.logger)
			return
		}
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer cannot stream", h.logger)
		return
	}

	ctx := r.Context()
	var (
		full     strings.Builder
		seen     = map[string]string{}
		emitted  []string
		seenRefs = map[string]struct{}{}
	)

	streamErr := h.producer.Stream(ctx, b, req.History, req.Message, func(c chat.Chunk) error {
		if err := sse.writeEvent(ctx, "chunk", chunkEvent{Text: c.Text}); err != nil {
			return err
		}
		if len(c.Grounding) > 0 {
			fresh := c.Grounding[:0:0]
			for _, g := range c.Grounding {
				if _, dup := seenRefs[g.URI]; dup {
					continue
				}
				seenRefs[g.URI] = struct{}{}
				fresh = append(fresh, g)
			}
			if len(fresh) > 0 {
				if err := sse.writeEvent(ctx, "grounding", groundingEvent{Chunks: fresh}); err != nil {
					return err
				}
			}
		}

		full.WriteString(c.Text)
		if store == nil {
			return nil
		}

		// Re-extract from the whole accumulated reply: only fences that
		// have closed since the last pass produce new or changed files.
		extracted := artifact.Extract(full.String())
		for _, name := range extracted.Names() {
			content, _ := extracted.Get(name)
			if prev, ok := seen[name]; ok && prev == content {
				continue
			}
			seen[name] = content
			store.Edit(name, content)
			if !slices.Contains(emitted, name) {
				emitted = append(emitted, name)
			}
			if err := sse.writeEvent(ctx, "artifact", artifactEvent{Name: name, Content: content}); err != nil {
				return err
			}
		}
		return nil
	})

	if streamErr != nil {
		code := "stream_failed"
		if errors.Is(streamErr, chat.ErrBusy) {
			code = "model_busy"
		}
		h.logger.Warn("chat stream ended with error", "error", streamErr, "bot_id", id)
		if err := sse.writeEvent(ctx, "error", errorEvent{Error: code, Message: "generation failed"}); err != nil {
			h.logger.Debug("failed to write error event", "error", err)
		}
		return
	}

	reply := full.String()
	h.generateMedia(ctx, sse, b, reply)

	if err := sse.writeEvent(ctx, "done", doneEvent{
		MessageID: uuid.NewString(),
		Text:      strings.TrimSpace(artifact.StripMediaDirectives(reply)),
		Artifacts: emitted,
	}); err != nil {
		h.logger.Debug("failed to write done event", "error", err)
		return
	}

	// Usage bookkeeping is best-effort; the reply already streamed.
	if err := h.bots.TouchUsage(ctx, id); err != nil {
		h.logger.Debug("failed to bump usage", "error", err, "bot_id", id)
	}
	if err := h.bots.SetLastActive(ctx, id); err != nil {
		h.logger.Debug("failed to record last active bot", "error", err)
	}
}

// generateMedia resolves [GENERATE_IMAGE: ...] directives in the finished
// reply. Each directive becomes a media event, or an error event when
// generation fails; failures never abort the response.
func (h *chatHandler) generateMedia(ctx context.Context, sse *sseWriter, b bot.Bot, reply string) {
	prompts := artifact.ScanMediaDirectives(reply)
	if len(prompts) == 0 || !b.Has(bot.CapImageGen) {
		return
	}

	for _, prompt := range prompts {
		url, err := h.producer.GenerateImage(ctx, b, prompt)
		if err != nil {
			h.logger.Warn("image generation failed", "error", err, "bot_id", b.ID)
			if werr := sse.writeEvent(ctx, "error", errorEvent{Error: "image_failed", Message: "image generation failed"}); werr != nil {
				return
			}
			continue
		}
		if werr := sse.writeEvent(ctx, "media", mediaEvent{Prompt: prompt, URL: url}); werr != nil {
			return
		}
	}
}
