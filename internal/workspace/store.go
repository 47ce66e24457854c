// Package workspace provides the multi-file document store for one project
// context: named text buffers, per-file bounded undo/redo history with
// debounced checkpointing, and search/replace over the active buffer.
//
// The live content is always updated synchronously — Select after Edit on
// the same file observes the new content immediately. Only the history
// checkpoint is deferred: edits within the quiet window coalesce into one
// snapshot, so a burst of fast typing costs a single undo step.
package workspace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/atolyehq/atolye/internal/fileset"
)

const (
	// DefaultHistoryDepth bounds each file's snapshot stack.
	DefaultHistoryDepth = 50

	// DefaultDebounce is the quiet window before an edit is checkpointed.
	DefaultDebounce = 400 * time.Millisecond
)

// ChangeFunc is invoked after every content mutation with a snapshot of
// the full file set. The store calls it outside its own lock; the snapshot
// is a private copy the callback may retain.
type ChangeFunc func(snapshot *fileset.Set)

// Config contains parameters for creating a Store.
type Config struct {
	HistoryDepth int           // 0 = DefaultHistoryDepth
	Debounce     time.Duration // 0 = DefaultDebounce
	Logger       *slog.Logger  // nil = slog.Default()
	OnChange     ChangeFunc    // optional: preview regeneration + persistence write-through
}

// Store holds the file set and history map for one project context.
// It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	files     *fileset.Set
	histories map[string]*history
	timers    map[string]*time.Timer
	active    string

	depth    int
	debounce time.Duration
	logger   *slog.Logger
	onChange ChangeFunc
}

// New creates a Store seeded with the given file set (nil = fileset.Seed()).
// Every loaded file starts with a single-entry history holding its loaded
// content.
func New(initial *fileset.Set, cfg Config) *Store {
	if initial == nil {
		initial = fileset.Seed()
	}
	if cfg.HistoryDepth <= 0 {
		cfg.HistoryDepth = DefaultHistoryDepth
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Store{
		timers:   make(map[string]*time.Timer),
		depth:    cfg.HistoryDepth,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		onChange: cfg.OnChange,
	}
	s.loadLocked(initial)
	return s
}

// loadLocked replaces the file set and resets all histories. Callers hold
// s.mu (or own s exclusively, as in New).
func (s *Store) loadLocked(set *fileset.Set) {
	s.files = set.Clone()
	s.histories = make(map[string]*history, set.Len())
	for _, name := range set.Names() {
		content, _ := set.Get(name)
		s.histories[name] = seeded(content)
	}
	if entry, ok := s.files.EntryFile(); ok {
		s.active = entry
	} else {
		s.active = ""
	}
}

// Select returns the current content for a file, or the empty string if
// the file does not exist yet. It never fails.
func (s *Store) Select(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, _ := s.files.Get(name)
	return content
}

// Files returns a snapshot copy of the current file set.
func (s *Store) Files() *fileset.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files.Clone()
}

// ActiveFile returns the currently selected file name.
func (s *Store) ActiveFile() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveFile switches the active buffer. Unknown names are accepted;
// the file springs into existence on the next Edit.
func (s *Store) SetActiveFile(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = name
}

// Edit replaces a file's content immediately and schedules a debounced
// history checkpoint. Another edit to the same file inside the quiet
// window cancels and reschedules the pending checkpoint; edits to other
// files have independent timers.
func (s *Store) Edit(name, content string) {
	s.mu.Lock()
	s.files.Put(name, content)
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(s.debounce, func() {
		s.checkpoint(name, timer)
	})
	s.timers[name] = timer
	snapshot := s.files.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
}

// checkpoint commits the file's current content to its history, provided
// the firing timer is still the scheduled one (a later edit or an
// undo/redo supersedes it).
func (s *Store) checkpoint(name string, timer *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timers[name] != timer {
		return
	}
	delete(s.timers, name)
	s.commitLocked(name)
}

// commitLocked pushes the current content of name onto its history.
func (s *Store) commitLocked(name string) {
	content, ok := s.files.Get(name)
	if !ok {
		return
	}
	h := s.histories[name]
	if h == nil {
		h = newHistory()
		s.histories[name] = h
	}
	h.push(content, s.depth)
}

// Flush commits any pending checkpoint for a file synchronously. Used on
// project-context switches and in tests; a no-op when nothing is pending.
func (s *Store) Flush(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
		s.commitLocked(name)
	}
}

// Undo steps the file back one checkpoint and applies that snapshot as the
// current content, bypassing the debounce. A pending checkpoint for the
// file is cancelled first so it cannot overwrite the restored state. At
// the stack boundary Undo is a no-op and returns false.
func (s *Store) Undo(name string) bool {
	return s.travel(name, func(h *history) (string, bool) { return h.undo() })
}

// Redo steps the file forward one checkpoint. Mirror of Undo.
func (s *Store) Redo(name string) bool {
	return s.travel(name, func(h *history) (string, bool) { return h.redo() })
}

func (s *Store) travel(name string, move func(*history) (string, bool)) bool {
	s.mu.Lock()
	h := s.histories[name]
	if h == nil {
		s.mu.Unlock()
		return false
	}
	content, ok := move(h)
	if !ok {
		s.mu.Unlock()
		return false
	}
	if t, exists := s.timers[name]; exists {
		t.Stop()
		delete(s.timers, name)
	}
	s.files.Put(name, content)
	snapshot := s.files.Clone()
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// Clear empties a file through the normal edit path, so clearing is itself
// undoable.
func (s *Store) Clear(name string) {
	s.Edit(name, "")
}

// LoadFileSet replaces the entire file set, resets every file's history to
// a single seeded entry, and selects the default active file (index.html,
// else the first .html file, else the first file). All pending checkpoint
// timers of the previous set are cancelled without firing.
func (s *Store) LoadFileSet(set *fileset.Set) {
	s.mu.Lock()
	s.cancelTimersLocked()
	s.loadLocked(set)
	snapshot := s.files.Clone()
	active := s.active
	s.mu.Unlock()

	s.logger.Debug("loaded file set", "files", snapshot.Len(), "active", active)
	s.notify(snapshot)
}

// Close cancels all pending checkpoint timers. The store remains readable
// but no deferred work survives.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimersLocked()
}

func (s *Store) cancelTimersLocked() {
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}

func (s *Store) notify(snapshot *fileset.Set) {
	if s.onChange != nil {
		s.onChange(snapshot)
	}
}

// historyState reports a file's stack length and index, for tests and the
// API's undo/redo button state.
func (s *Store) historyState(name string) (length, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.histories[name]
	if h == nil {
		return 0, -1
	}
	return len(h.stack), h.index
}

// CanUndo reports whether Undo(name) would change content.
func (s *Store) CanUndo(name string) bool {
	_, index := s.historyState(name)
	return index > 0
}

// CanRedo reports whether Redo(name) would change content.
func (s *Store) CanRedo(name string) bool {
	length, index := s.historyState(name)
	return index >= 0 && index < length-1
}
