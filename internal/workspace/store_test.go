package workspace

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/atolyehq/atolye/internal/fileset"
	"github.com/atolyehq/atolye/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestStore returns a store with a short debounce so tests that wait
// for timers stay fast. Tests that need determinism use Flush instead.
func newTestStore(initial *fileset.Set) *Store {
	return New(initial, Config{
		Debounce: 10 * time.Millisecond,
		Logger:   log.NewNop(),
	})
}

func emptySet() *fileset.Set {
	return fileset.New()
}

func TestSelectAfterEditIsImmediate(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "one")
	assert.Equal(t, "one", s.Select("a.js"))

	s.Edit("a.js", "two")
	assert.Equal(t, "two", s.Select("a.js"))
}

func TestSelectMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	assert.Equal(t, "", s.Select("no-such-file.css"))
}

func TestDebounceCoalescesBurst(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	for i := 0; i < 10; i++ {
		s.Edit("a.js", fmt.Sprintf("draft %d", i))
	}
	s.Flush("a.js")

	length, index := s.historyState("a.js")
	assert.Equal(t, 1, length, "burst should checkpoint once")
	assert.Equal(t, 0, index)
	assert.Equal(t, "draft 9", s.Select("a.js"))
}

func TestDebounceTimerFires(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "content")

	assert.Eventually(t, func() bool {
		length, _ := s.historyState("a.js")
		return length == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPerFileTimersAreIndependent(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "aaa")
	s.Edit("b.css", "bbb")
	s.Flush("a.js")

	lengthA, _ := s.historyState("a.js")
	lengthB, _ := s.historyState("b.css")
	assert.Equal(t, 1, lengthA)
	assert.Equal(t, 0, lengthB, "flushing a.js must not checkpoint b.css")

	s.Flush("b.css")
	lengthB, _ = s.historyState("b.css")
	assert.Equal(t, 1, lengthB)
}

func TestHistoryBounds(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	for i := 0; i < DefaultHistoryDepth+20; i++ {
		s.Edit("a.js", fmt.Sprintf("rev %d", i))
		s.Flush("a.js")
	}

	length, index := s.historyState("a.js")
	assert.LessOrEqual(t, length, DefaultHistoryDepth)
	assert.GreaterOrEqual(t, index, 0)
	assert.Less(t, index, length)
}

func TestNoOpEditDoesNotGrowHistory(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "same")
	s.Flush("a.js")
	s.Edit("a.js", "same")
	s.Flush("a.js")

	length, _ := s.historyState("a.js")
	assert.Equal(t, 1, length)
}

func TestUndoRedoInverse(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "first")
	s.Flush("a.js")
	s.Edit("a.js", "second")
	s.Flush("a.js")

	assert.True(t, s.Undo("a.js"))
	assert.Equal(t, "first", s.Select("a.js"))

	assert.True(t, s.Redo("a.js"))
	assert.Equal(t, "second", s.Select("a.js"))
}

func TestUndoRedoBoundariesAreNoOps(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	assert.False(t, s.Undo("a.js"), "undo on unknown file")
	assert.False(t, s.Redo("a.js"), "redo on unknown file")

	s.Edit("a.js", "only")
	s.Flush("a.js")

	assert.False(t, s.Undo("a.js"), "single snapshot cannot undo")
	assert.False(t, s.Redo("a.js"), "nothing to redo")
	assert.Equal(t, "only", s.Select("a.js"))
}

func TestNewEditDiscardsRedoTail(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "one")
	s.Flush("a.js")
	s.Edit("a.js", "two")
	s.Flush("a.js")

	s.Undo("a.js")
	s.Edit("a.js", "branch")
	s.Flush("a.js")

	assert.False(t, s.Redo("a.js"), "redo tail must be gone after a new edit")
	assert.Equal(t, "branch", s.Select("a.js"))

	s.Undo("a.js")
	assert.Equal(t, "one", s.Select("a.js"))
}

func TestNoOpEditAfterUndoKeepsRedoTail(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "one")
	s.Flush("a.js")
	s.Edit("a.js", "two")
	s.Flush("a.js")

	s.Undo("a.js")
	assert.Equal(t, "one", s.Select("a.js"))
	assert.True(t, s.CanRedo("a.js"))

	// Restating the current content is a no-op checkpoint and must not
	// discard the redo entries.
	s.Edit("a.js", "one")
	s.Flush("a.js")

	assert.True(t, s.CanRedo("a.js"))
	assert.True(t, s.Redo("a.js"))
	assert.Equal(t, "two", s.Select("a.js"))
}

func TestUndoCancelsPendingCheckpoint(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "committed")
	s.Flush("a.js")
	s.Edit("a.js", "newer")
	s.Flush("a.js")

	// This edit is left pending, then undone before its timer fires.
	s.Edit("a.js", "uncommitted")
	assert.True(t, s.Undo("a.js"))
	assert.Equal(t, "committed", s.Select("a.js"))

	// The stale checkpoint must not resurrect "uncommitted".
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "committed", s.Select("a.js"))
	length, _ := s.historyState("a.js")
	assert.Equal(t, 2, length)
}

func TestClearIsUndoable(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "precious")
	s.Flush("a.js")
	s.Clear("a.js")
	s.Flush("a.js")

	assert.Equal(t, "", s.Select("a.js"))
	assert.True(t, s.Undo("a.js"))
	assert.Equal(t, "precious", s.Select("a.js"))
}

func TestLoadFileSetResetsHistories(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("old.js", "old content")
	s.Flush("old.js")

	next := fileset.New()
	next.Put("style.css", "body{}")
	next.Put("page.html", "<p></p>")
	s.LoadFileSet(next)

	assert.Equal(t, "page.html", s.ActiveFile(), "first .html wins without index.html")
	assert.Equal(t, "", s.Select("old.js"), "previous files are gone")

	length, index := s.historyState("style.css")
	assert.Equal(t, 1, length)
	assert.Equal(t, 0, index)
	assert.False(t, s.CanUndo("style.css"))
}

func TestLoadFileSetCancelsPendingTimers(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	s.Edit("a.js", "pending")
	s.LoadFileSet(fileset.Seed())

	time.Sleep(50 * time.Millisecond)
	length, _ := s.historyState("a.js")
	assert.Equal(t, 0, length, "stale checkpoint must not fire after load")
}

func TestDefaultActiveFilePrefersIndexHTML(t *testing.T) {
	t.Parallel()

	set := fileset.New()
	set.Put("a.css", "")
	set.Put("index.html", "<html></html>")
	s := newTestStore(set)
	defer s.Close()

	assert.Equal(t, "index.html", s.ActiveFile())
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	t.Parallel()

	var got []*fileset.Set
	s := New(emptySet(), Config{
		Debounce: 10 * time.Millisecond,
		Logger:   log.NewNop(),
		OnChange: func(snapshot *fileset.Set) { got = append(got, snapshot) },
	})
	defer s.Close()

	s.Edit("a.js", "v1")
	s.Edit("a.js", "v2")

	assert.Len(t, got, 2)
	c, _ := got[0].Get("a.js")
	assert.Equal(t, "v1", c, "snapshot must not alias live state")
	c, _ = got[1].Get("a.js")
	assert.Equal(t, "v2", c)
}

func TestCanUndoCanRedo(t *testing.T) {
	t.Parallel()

	s := newTestStore(emptySet())
	defer s.Close()

	assert.False(t, s.CanUndo("a.js"))
	assert.False(t, s.CanRedo("a.js"))

	s.Edit("a.js", "one")
	s.Flush("a.js")
	s.Edit("a.js", "two")
	s.Flush("a.js")

	assert.True(t, s.CanUndo("a.js"))
	assert.False(t, s.CanRedo("a.js"))

	s.Undo("a.js")
	assert.False(t, s.CanUndo("a.js"))
	assert.True(t, s.CanRedo("a.js"))
}
