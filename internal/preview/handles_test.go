package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atolyehq/atolye/internal/log"
)

func TestMaterializeSupersedesPreviousHandle(t *testing.T) {
	t.Parallel()

	h := NewHandles(log.NewNop())

	first := h.Materialize("bot-1", "<p>one</p>")
	second := h.Materialize("bot-1", "<p>two</p>")

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 1, h.Live(), "at most one live handle per project")

	_, ok := h.Get(first.Token)
	assert.False(t, ok, "superseded handle must be revoked")

	doc, ok := h.Get(second.Token)
	require.True(t, ok)
	assert.Equal(t, "<p>two</p>", doc.HTML)
}

func TestHandlesAreIndependentPerProject(t *testing.T) {
	t.Parallel()

	h := NewHandles(log.NewNop())

	a := h.Materialize("bot-a", "a")
	b := h.Materialize("bot-b", "b")

	assert.Equal(t, 2, h.Live())

	h.Materialize("bot-a", "a2")
	_, ok := h.Get(a.Token)
	assert.False(t, ok)
	_, ok = h.Get(b.Token)
	assert.True(t, ok, "another project's handle survives")
}

func TestRelease(t *testing.T) {
	t.Parallel()

	h := NewHandles(log.NewNop())
	doc := h.Materialize("bot-1", "x")

	require.NoError(t, h.Release(doc.Token))
	assert.Equal(t, 0, h.Live())

	assert.ErrorIs(t, h.Release(doc.Token), ErrHandleNotFound)
}

func TestReleaseProject(t *testing.T) {
	t.Parallel()

	h := NewHandles(log.NewNop())
	h.Materialize("bot-1", "x")

	h.ReleaseProject("bot-1")
	assert.Equal(t, 0, h.Live())

	// Releasing a project with no live handle is harmless.
	h.ReleaseProject("bot-1")
}
