package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atolyehq/atolye/internal/fileset"
)

func searchStore(content string) *Store {
	set := fileset.New()
	set.Put("doc.html", content)
	return newTestStore(set)
}

func TestFindNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		query   string
		from    int
		want    Match
		found   bool
	}{
		{
			name:    "finds forward from position",
			content: "abc abc abc",
			query:   "abc",
			from:    1,
			want:    Match{Start: 4, End: 7},
			found:   true,
		},
		{
			name:    "case-insensitive",
			content: "Hello WORLD",
			query:   "world",
			from:    0,
			want:    Match{Start: 6, End: 11},
			found:   true,
		},
		{
			name:    "wraps around on miss",
			content: "needle in front",
			query:   "needle",
			from:    8,
			want:    Match{Start: 0, End: 6},
			found:   true,
		},
		{
			name:    "not found anywhere",
			content: "nothing here",
			query:   "zzz",
			from:    0,
			found:   false,
		},
		{
			name:    "empty query is a no-op",
			content: "anything",
			query:   "",
			from:    0,
			found:   false,
		},
		{
			name:    "from past end still wraps",
			content: "abc",
			query:   "abc",
			from:    99,
			want:    Match{Start: 0, End: 3},
			found:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := searchStore(tt.content)
			defer s.Close()

			got, found := s.FindNext(tt.query, tt.from)
			assert.Equal(t, tt.found, found)
			if found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFindPrev(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		query   string
		from    int
		want    Match
		found   bool
	}{
		{
			name:    "finds backward",
			content: "abc abc abc",
			query:   "abc",
			from:    8,
			want:    Match{Start: 4, End: 7},
			found:   true,
		},
		{
			name:    "no wraparound on miss",
			content: "tail needle",
			query:   "needle",
			from:    3,
			found:   false,
		},
		{
			name:    "case-insensitive",
			content: "ABC abc",
			query:   "abc",
			from:    7,
			want:    Match{Start: 4, End: 7},
			found:   true,
		},
		{
			name:    "empty query is a no-op",
			content: "anything",
			query:   "",
			from:    5,
			found:   false,
		},
		{
			name:    "from zero still reaches a match at the start",
			content: "abc",
			query:   "abc",
			from:    0,
			want:    Match{Start: 0, End: 3},
			found:   true,
		},
		{
			name:    "from zero misses a match past the start",
			content: "xabc",
			query:   "abc",
			from:    0,
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := searchStore(tt.content)
			defer s.Close()

			got, found := s.FindPrev(tt.query, tt.from)
			assert.Equal(t, tt.found, found)
			if found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestReplaceAllLiteral(t *testing.T) {
	t.Parallel()

	s := searchStore("a.b.c")
	defer s.Close()

	count := s.ReplaceAll(".", "_")
	assert.Equal(t, 2, count)
	assert.Equal(t, "a_b_c", s.Select("doc.html"), "dot must be treated literally")
}

func TestReplaceAllIsUndoable(t *testing.T) {
	t.Parallel()

	s := searchStore("hello Hello HELLO")
	defer s.Close()
	s.Flush("doc.html")

	// Seed history already holds the original; now replace and flush.
	count := s.ReplaceAll("hello", "bye")
	assert.Equal(t, 3, count)
	s.Flush("doc.html")
	assert.Equal(t, "bye bye bye", s.Select("doc.html"))

	assert.True(t, s.Undo("doc.html"))
	assert.Equal(t, "hello Hello HELLO", s.Select("doc.html"))
}

func TestReplaceAllEmptyQueryAndNoMatch(t *testing.T) {
	t.Parallel()

	s := searchStore("unchanged")
	defer s.Close()

	assert.Equal(t, 0, s.ReplaceAll("", "x"))
	assert.Equal(t, 0, s.ReplaceAll("absent", "x"))
	assert.Equal(t, "unchanged", s.Select("doc.html"))
}
