package fileset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put("b.css", "1")
	s.Put("a.html", "2")
	s.Put("b.css", "3") // rewrite keeps position

	assert.Equal(t, []string{"b.css", "a.html"}, s.Names())

	got, ok := s.Get("b.css")
	assert.True(t, ok)
	assert.Equal(t, "3", got)
}

func TestEmptyFileIsDistinctFromAbsent(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put("empty.js", "")

	_, ok := s.Get("empty.js")
	assert.True(t, ok)
	assert.True(t, s.Has("empty.js"))
	assert.False(t, s.Has("missing.js"))
}

func TestEntryFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		want  string
		ok    bool
	}{
		{
			name:  "prefers index.html",
			files: []string{"main.html", "index.html", "style.css"},
			want:  "index.html",
			ok:    true,
		},
		{
			name:  "first html file",
			files: []string{"style.css", "Page.HTML", "other.html"},
			want:  "Page.HTML",
			ok:    true,
		},
		{
			name:  "first file when no html",
			files: []string{"script.js", "style.css"},
			want:  "script.js",
			ok:    true,
		},
		{
			name:  "empty set",
			files: nil,
			want:  "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New()
			for _, f := range tt.files {
				s.Put(f, "x")
			}
			got, ok := s.EntryFile()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put("a", "1")
	c := s.Clone()
	c.Put("a", "2")
	c.Put("b", "3")

	got, _ := s.Get("a")
	assert.Equal(t, "1", got)
	assert.False(t, s.Has("b"))
	assert.Equal(t, []string{"a", "b"}, c.Names())
}

func TestSeed(t *testing.T) {
	t.Parallel()

	s := Seed()
	assert.Equal(t, []string{"index.html", "style.css", "script.js"}, s.Names())

	entry, ok := s.EntryFile()
	assert.True(t, ok)
	assert.Equal(t, "index.html", entry)
}
