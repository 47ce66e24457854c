// Package kv defines the external key-value store the studio persists
// into, together with its change-notification contract.
//
// The core never touches global mutable state: components receive a Store
// and react to its events. Two implementations exist — Memory for tests
// and database-less runs, Postgres for durable deployments.
package kv

import (
	"context"
	"sync"
)

// Well-known keys. Per-project file sets live under FilesKey(projectID);
// the remaining keys are single documents.
const (
	// KeyLastActiveBot records the most recently viewed project ID.
	KeyLastActiveBot = "last_active_bot_id"

	// KeyBots holds the serialized bot profile list.
	KeyBots = "bots"

	// KeyPinned holds the pinned-chat list.
	KeyPinned = "global_pinned"

	filesPrefix = "preview_files_"
)

// FilesKey returns the storage key for a project's serialized file set.
func FilesKey(projectID string) string {
	return filesPrefix + projectID
}

// Event describes one committed mutation.
type Event struct {
	Key     string
	Value   string
	Deleted bool
}

// Store is the persistence collaborator contract. All implementations are
// safe for concurrent use and notify subscribers after each committed
// Set/Delete.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes key to value, creating it if needed.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all entries whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string]string, error)

	// Subscribe registers for change events. The returned cancel func
	// must be called to release the subscription; after cancel the
	// channel is closed.
	Subscribe() (<-chan Event, func())
}

// notifier implements subscriber fan-out shared by the Store
// implementations. Slow subscribers drop events rather than block writers.
type notifier struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]chan Event)}
}

func (n *notifier) subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan Event, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (n *notifier) publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
