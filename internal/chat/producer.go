// Package chat turns assistant profiles into streamed model output.
//
// A Producer is the generation backend. The Gemini implementation talks to
// the real API; Scripted replays canned output for tests and offline runs.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atolyehq/atolye/internal/bot"
)

// Sentinel errors for generation.
var (
	// ErrBusy indicates the upstream model rejected the request for
	// quota reasons and the caller should retry later.
	ErrBusy = errors.New("model is busy")

	// ErrCapabilityDisabled indicates the profile does not allow the
	// requested kind of generation.
	ErrCapabilityDisabled = errors.New("capability disabled for this bot")

	// ErrNoMedia indicates the model returned no usable media payload.
	ErrNoMedia = errors.New("no media in model response")
)

// Role values for conversation history.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one prior turn of the conversation.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// GroundingChunk is one web source the model grounded a statement on.
type GroundingChunk struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Chunk is one streamed increment of model output.
type Chunk struct {
	Text      string
	Grounding []GroundingChunk
}

// ChunkFunc receives streamed output. Returning an error aborts the stream.
type ChunkFunc func(Chunk) error

// Producer generates assistant output for a profile.
type Producer interface {
	// Stream generates a reply to input given the prior history, invoking
	// fn for each increment as it arrives.
	Stream(ctx context.Context, b bot.Bot, history []Message, input string, fn ChunkFunc) error

	// GenerateImage renders prompt to a data URL. Fails with
	// ErrCapabilityDisabled when the profile has image generation off.
	GenerateImage(ctx context.Context, b bot.Bot, prompt string) (string, error)
}

// SystemInstruction assembles the full system prompt for a profile:
// persona, contact block, operator instruction, and attached knowledge.
func SystemInstruction(b bot.Bot) string {
	instruction := b.SystemInstruction
	if instruction == "" {
		instruction = "Professional and technical tone."
	}

	knowledge := make([]string, 0, len(b.KnowledgeBase))
	for _, entry := range b.KnowledgeBase {
		knowledge = append(knowledge, entry.Content)
	}

	media := ""
	if b.HasImageGen {
		media = "[GENERATE_IMAGE: prompt] formatını kullan."
	}

	return fmt.Sprintf(`Senin adın %s. Sen Premium Engineering modunda çalışan bir yapay zekasın.

UZMANLIK: Yazılım Mimarisi, Clean Code ve SOLID.
İLETİŞİM: %s | %s.

KRİTİK: %s

KNOWLEDGE: %s

MEDYA: %s`,
		b.Name,
		orDefault(b.ContactEmail, "Belirtilmedi"),
		orDefault(b.Website, "Belirtilmedi"),
		instruction,
		strings.Join(knowledge, "\n"),
		media,
	)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
