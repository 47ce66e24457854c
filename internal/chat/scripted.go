package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/atolyehq/atolye/internal/bot"
)

// Scripted is a Producer that replays canned chunks. It backs tests and
// runs without an API key.
type Scripted struct {
	mu sync.Mutex

	// Chunks are emitted in order on every Stream call.
	Chunks []Chunk

	// ImageURL is returned by GenerateImage; empty means ErrNoMedia.
	ImageURL string

	// Err, when set, fails Stream before emitting anything.
	Err error

	inputs []string
}

// NewScripted creates a producer that emits the given text pieces as
// individual chunks.
func NewScripted(pieces ...string) *Scripted {
	chunks := make([]Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = Chunk{Text: p}
	}
	return &Scripted{Chunks: chunks}
}

func (s *Scripted) Stream(_ context.Context, _ bot.Bot, _ []Message, input string, fn ChunkFunc) error {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	err := s.Err
	chunks := s.Chunks
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, c := range chunks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scripted) GenerateImage(_ context.Context, b bot.Bot, _ string) (string, error) {
	if !b.HasImageGen {
		return "", fmt.Errorf("bot %q image generation: %w", b.ID, ErrCapabilityDisabled)
	}

	s.mu.Lock()
	url := s.ImageURL
	s.mu.Unlock()

	if url == "" {
		return "", ErrNoMedia
	}
	return url, nil
}

// Inputs returns the prompts Stream has received, in order.
func (s *Scripted) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.inputs))
	copy(out, s.inputs)
	return out
}
