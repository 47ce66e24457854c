package kv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := t.Context()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "a", "one"))
	require.NoError(t, store.Set(ctx, "a", "two"))

	v, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestMemoryDelete(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, "a", "one"))
	require.NoError(t, store.Delete(ctx, "a"))

	_, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is fine.
	require.NoError(t, store.Delete(ctx, "a"))
}

func TestMemoryList(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, FilesKey("p1"), "{}"))
	require.NoError(t, store.Set(ctx, FilesKey("p2"), "{}"))
	require.NoError(t, store.Set(ctx, KeyLastActiveBot, "p1"))

	entries, err := store.List(ctx, "preview_files_")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Contains(t, entries, FilesKey("p1"))
	assert.Contains(t, entries, FilesKey("p2"))
}

func TestSubscribeReceivesEvents(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	ctx := t.Context()

	events, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Set(ctx, "a", "one"))
	require.NoError(t, store.Delete(ctx, "a"))

	ev := recvEvent(t, events)
	assert.Equal(t, Event{Key: "a", Value: "one"}, ev)

	ev = recvEvent(t, events)
	assert.Equal(t, Event{Key: "a", Deleted: true}, ev)
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	t.Parallel()

	store := NewMemory()

	events, cancel := store.Subscribe()
	cancel()

	_, open := <-events
	assert.False(t, open)

	// Cancel is idempotent.
	cancel()

	// Writes after cancel must not panic.
	require.NoError(t, store.Set(t.Context(), "a", "one"))
}

func TestDeleteAbsentKeyPublishesNothing(t *testing.T) {
	t.Parallel()

	store := NewMemory()

	events, cancel := store.Subscribe()
	defer cancel()

	require.NoError(t, store.Delete(t.Context(), "ghost"))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestFilesKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "preview_files_bot-1", FilesKey("bot-1"))
}

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}
