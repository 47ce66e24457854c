package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/atolyehq/atolye/internal/bot"
	"github.com/atolyehq/atolye/internal/log"
)

// Default model parameters applied when a profile leaves them at zero.
const (
	defaultTemperature = 0.7
	defaultTopP        = 0.95
	defaultTopK        = 40
)

// GeminiConfig configures the Gemini producer.
type GeminiConfig struct {
	// Model is the chat model name, e.g. "gemini-2.5-flash".
	Model string

	// ImageModel handles GenerateImage calls.
	ImageModel string

	Logger log.Logger
}

// Gemini is a Producer backed by the Gemini API. The client reads its API
// key from the environment.
type Gemini struct {
	client     *genai.Client
	model      string
	imageModel string
	logger     log.Logger
}

// NewGemini creates a Gemini producer.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client:     client,
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
		logger:     cfg.Logger,
	}, nil
}

// Stream generates a reply with the profile's parameters. Quota rejections
// surface as ErrBusy so callers can signal retry to the user.
func (g *Gemini) Stream(ctx context.Context, b bot.Bot, history []Message, input string, fn ChunkFunc) error {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: input}},
	})

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction(b)}},
		},
		Temperature: genai.Ptr(nonZero(b.Temperature, defaultTemperature)),
		TopP:        genai.Ptr(nonZero(b.TopP, defaultTopP)),
		TopK:        genai.Ptr(nonZero(b.TopK, defaultTopK)),
	}
	if b.HasSearchGrounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	g.logger.Debug("streaming chat",
		"bot_id", b.ID,
		"model", g.model,
		"history_len", len(history),
		"grounding", b.HasSearchGrounding,
	)

	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, config) {
		if err != nil {
			if strings.Contains(err.Error(), "429") {
				return fmt.Errorf("%w: %s", ErrBusy, err)
			}
			return fmt.Errorf("generate content: %w", err)
		}
		chunk := toChunk(resp)
		if chunk.Text == "" {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

// GenerateImage renders prompt through the image model and returns the
// result as a data URL.
func (g *Gemini) GenerateImage(ctx context.Context, b bot.Bot, prompt string) (string, error) {
	if !b.HasImageGen {
		return "", fmt.Errorf("bot %q image generation: %w", b.ID, ErrCapabilityDisabled)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{AspectRatio: "1:1"},
		},
	)
	if err != nil {
		if strings.Contains(err.Error(), "429") {
			return "", fmt.Errorf("%w: %s", ErrBusy, err)
		}
		return "", fmt.Errorf("generate image: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil {
				continue
			}
			encoded := base64.StdEncoding.EncodeToString(part.InlineData.Data)
			return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MIMEType, encoded), nil
		}
	}
	return "", ErrNoMedia
}

func toChunk(resp *genai.GenerateContentResponse) Chunk {
	chunk := Chunk{Text: resp.Text()}
	if len(resp.Candidates) == 0 {
		return chunk
	}

	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return chunk
	}
	for _, gc := range meta.GroundingChunks {
		if gc.Web == nil {
			continue
		}
		chunk.Grounding = append(chunk.Grounding, GroundingChunk{
			Title: gc.Web.Title,
			URI:   gc.Web.URI,
		})
	}
	return chunk
}

func nonZero(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return v
}
