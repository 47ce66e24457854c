package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/atolyehq/atolye/internal/fileset"
	"github.com/atolyehq/atolye/internal/kv"
	"github.com/atolyehq/atolye/internal/log"
)

// persistTimeout bounds the write-through to the key-value store performed
// after each mutation.
const persistTimeout = 5 * time.Second

// ManagerConfig configures the per-project store registry.
type ManagerConfig struct {
	HistoryDepth int           // 0 = DefaultHistoryDepth
	Debounce     time.Duration // 0 = DefaultDebounce
	Logger       log.Logger    // nil = slog.Default()
}

// Manager hands out one Store per project, loading the file set from the
// key-value collaborator on first access and writing every mutation back
// through.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	kv     kv.Store
	cfg    ManagerConfig
	logger log.Logger
}

// NewManager creates a registry over the given key-value store.
func NewManager(store kv.Store, cfg ManagerConfig, logger log.Logger) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		kv:     store,
		cfg:    cfg,
		logger: logger,
	}
}

// Get returns the Store for a project, creating it on first access. A
// missing or malformed persisted file set falls back to the seed set.
func (m *Manager) Get(ctx context.Context, projectID string) (*Store, error) {
	m.mu.Lock()
	if s, ok := m.stores[projectID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	initial, err := m.load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have raced us here; keep the first store.
	if s, ok := m.stores[projectID]; ok {
		return s, nil
	}

	s := New(initial, Config{
		HistoryDepth: m.cfg.HistoryDepth,
		Debounce:     m.cfg.Debounce,
		Logger:       m.logger,
		OnChange:     m.persistFunc(projectID),
	})
	m.stores[projectID] = s
	return s, nil
}

// Drop closes and forgets a project's store, e.g. after the project is
// deleted.
func (m *Manager) Drop(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[projectID]; ok {
		s.Close()
		delete(m.stores, projectID)
	}
}

// Close cancels pending work in every store.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.stores {
		s.Close()
		delete(m.stores, id)
	}
}

func (m *Manager) load(ctx context.Context, projectID string) (*fileset.Set, error) {
	raw, ok, err := m.kv.Get(ctx, kv.FilesKey(projectID))
	if err != nil {
		return nil, fmt.Errorf("load project %q: %w", projectID, err)
	}
	if !ok {
		return fileset.Seed(), nil
	}

	set, err := fileset.Import([]byte(raw))
	if err != nil {
		m.logger.Warn("persisted file set is malformed, reseeding",
			"project_id", projectID, "error", err)
		return fileset.Seed(), nil
	}
	return set, nil
}

// persistFunc builds the write-through callback for one project. It runs
// on the store's mutation path, so failures are logged rather than
// propagated; content stays live in memory either way.
func (m *Manager) persistFunc(projectID string) ChangeFunc {
	key := kv.FilesKey(projectID)
	return func(snapshot *fileset.Set) {
		data, err := fileset.Export(snapshot)
		if err != nil {
			m.logger.Warn("encoding file set failed",
				"project_id", projectID, "error", err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := m.kv.Set(ctx, key, string(data)); err != nil {
			m.logger.Warn("persisting file set failed",
				"project_id", projectID, "error", err)
		}
	}
}
