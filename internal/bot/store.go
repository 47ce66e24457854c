package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atolyehq/atolye/internal/kv"
	"github.com/atolyehq/atolye/internal/log"
)

// Sentinel errors for profile lookups and writes.
var (
	// ErrNotFound indicates no profile exists with the requested ID.
	ErrNotFound = errors.New("bot not found")

	// ErrDuplicateID indicates a create collided with an existing profile.
	ErrDuplicateID = errors.New("bot id already exists")
)

// maxPinned bounds the pinned-chat list; older entries fall off the end.
const maxPinned = 10

// PinnedChat is one entry in the global pinned list, newest first.
type PinnedChat struct {
	ID        string `json:"id"`
	BotID     string `json:"botId"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
}

// Store persists profiles through the key-value collaborator. A fresh
// store seeds itself with the default profile on first read.
//
// Store is safe for concurrent use as long as the underlying kv.Store is;
// concurrent writers follow last-write-wins, matching the rest of the
// persistence layer.
type Store struct {
	kv     kv.Store
	logger log.Logger
}

// NewStore creates a profile store over kv.
func NewStore(store kv.Store, logger log.Logger) *Store {
	return &Store{kv: store, logger: logger}
}

// List returns all profiles. An empty or unparseable stored list yields
// the seed profile, which is written back so later reads are stable.
func (s *Store) List(ctx context.Context) ([]Bot, error) {
	raw, ok, err := s.kv.Get(ctx, kv.KeyBots)
	if err != nil {
		return nil, fmt.Errorf("load bots: %w", err)
	}

	if ok {
		var bots []Bot
		if err := json.Unmarshal([]byte(raw), &bots); err == nil {
			return bots, nil
		}
		s.logger.Warn("stored bot list is corrupt, reseeding")
	}

	seed := []Bot{Seed()}
	if err := s.save(ctx, seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// Get returns the profile with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Bot, error) {
	bots, err := s.List(ctx)
	if err != nil {
		return Bot{}, err
	}
	for _, b := range bots {
		if b.ID == id {
			return b, nil
		}
	}
	return Bot{}, fmt.Errorf("bot %q: %w", id, ErrNotFound)
}

// Create adds a new profile. A blank ID gets a generated one.
func (s *Store) Create(ctx context.Context, b Bot) (Bot, error) {
	bots, err := s.List(ctx)
	if err != nil {
		return Bot{}, err
	}

	if b.ID == "" {
		b.ID = NewID()
	}
	for _, existing := range bots {
		if existing.ID == b.ID {
			return Bot{}, fmt.Errorf("bot %q: %w", b.ID, ErrDuplicateID)
		}
	}
	if b.Status == "" {
		b.Status = StatusDraft
	}
	if b.KnowledgeBase == nil {
		b.KnowledgeBase = []KnowledgeEntry{}
	}
	if b.LastActive == "" {
		b.LastActive = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.save(ctx, append(bots, b)); err != nil {
		return Bot{}, err
	}
	return b, nil
}

// Update replaces the profile with the same ID.
func (s *Store) Update(ctx context.Context, b Bot) (Bot, error) {
	bots, err := s.List(ctx)
	if err != nil {
		return Bot{}, err
	}
	for i, existing := range bots {
		if existing.ID == b.ID {
			bots[i] = b
			if err := s.save(ctx, bots); err != nil {
				return Bot{}, err
			}
			return b, nil
		}
	}
	return Bot{}, fmt.Errorf("bot %q: %w", b.ID, ErrNotFound)
}

// Delete removes the profile and its stored file set.
func (s *Store) Delete(ctx context.Context, id string) error {
	bots, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := bots[:0]
	for _, b := range bots {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(bots) {
		return fmt.Errorf("bot %q: %w", id, ErrNotFound)
	}

	if err := s.save(ctx, kept); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, kv.FilesKey(id)); err != nil {
		return fmt.Errorf("delete bot files: %w", err)
	}
	return nil
}

// TouchUsage bumps the usage counter and last-active stamp after a chat.
func (s *Store) TouchUsage(ctx context.Context, id string) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	b.UsageCount++
	b.LastActive = time.Now().UTC().Format(time.RFC3339)
	_, err = s.Update(ctx, b)
	return err
}

// SetLastActive records the most recently viewed profile.
func (s *Store) SetLastActive(ctx context.Context, id string) error {
	if err := s.kv.Set(ctx, kv.KeyLastActiveBot, id); err != nil {
		return fmt.Errorf("set last active bot: %w", err)
	}
	return nil
}

// LastActive returns the most recently viewed profile ID, or "" if none
// has been recorded.
func (s *Store) LastActive(ctx context.Context) (string, error) {
	id, _, err := s.kv.Get(ctx, kv.KeyLastActiveBot)
	if err != nil {
		return "", fmt.Errorf("get last active bot: %w", err)
	}
	return id, nil
}

// Pin prepends a chat to the global pinned list, trimming it to the
// newest entries.
func (s *Store) Pin(ctx context.Context, botID, name string) ([]PinnedChat, error) {
	pinned, err := s.Pinned(ctx)
	if err != nil {
		return nil, err
	}

	item := PinnedChat{
		ID:        fmt.Sprintf("%d", time.Now().UnixMilli()),
		BotID:     botID,
		Name:      name,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	pinned = append([]PinnedChat{item}, pinned...)
	if len(pinned) > maxPinned {
		pinned = pinned[:maxPinned]
	}

	data, err := json.Marshal(pinned)
	if err != nil {
		return nil, fmt.Errorf("encode pinned list: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyPinned, string(data)); err != nil {
		return nil, fmt.Errorf("save pinned list: %w", err)
	}
	return pinned, nil
}

// Pinned returns the pinned-chat list, newest first.
func (s *Store) Pinned(ctx context.Context) ([]PinnedChat, error) {
	raw, ok, err := s.kv.Get(ctx, kv.KeyPinned)
	if err != nil {
		return nil, fmt.Errorf("load pinned list: %w", err)
	}
	if !ok {
		return []PinnedChat{}, nil
	}

	var pinned []PinnedChat
	if err := json.Unmarshal([]byte(raw), &pinned); err != nil {
		s.logger.Warn("pinned list is corrupt, resetting")
		return []PinnedChat{}, nil
	}
	return pinned, nil
}

func (s *Store) save(ctx context.Context, bots []Bot) error {
	data, err := json.Marshal(bots)
	if err != nil {
		return fmt.Errorf("encode bots: %w", err)
	}
	if err := s.kv.Set(ctx, kv.KeyBots, string(data)); err != nil {
		return fmt.Errorf("save bots: %w", err)
	}
	return nil
}
