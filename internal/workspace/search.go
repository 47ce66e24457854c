package workspace

import (
	"regexp"
	"strings"
)

// Match is a matched range in the active buffer, [Start, End) in bytes.
type Match struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FindNext searches the active file case-insensitively for query, starting
// at from. On a miss it wraps around and searches from the beginning. An
// empty query never matches.
func (s *Store) FindNext(query string, from int) (Match, bool) {
	if query == "" {
		return Match{}, false
	}
	text := strings.ToLower(s.Select(s.ActiveFile()))
	q := strings.ToLower(query)

	if from < 0 {
		from = 0
	}
	if from <= len(text) {
		if i := strings.Index(text[from:], q); i != -1 {
			return Match{Start: from + i, End: from + i + len(q)}, true
		}
	}
	if i := strings.Index(text, q); i != -1 {
		return Match{Start: i, End: i + len(q)}, true
	}
	return Match{}, false
}

// FindPrev searches backward from the position just before from. Unlike
// FindNext it does not wrap around on a miss; the observed editor behavior
// is asymmetric and is kept that way.
func (s *Store) FindPrev(query string, from int) (Match, bool) {
	if query == "" {
		return Match{}, false
	}
	text := strings.ToLower(s.Select(s.ActiveFile()))
	q := strings.ToLower(query)

	// A match may start at most at from-1, clamped to the buffer start so
	// a match at position 0 is still reachable.
	start := from - 1
	if start < 0 {
		start = 0
	}
	limit := start + len(q)
	if limit > len(text) {
		limit = len(text)
	}
	if i := strings.LastIndex(text[:limit], q); i != -1 {
		return Match{Start: i, End: i + len(q)}, true
	}
	return Match{}, false
}

// ReplaceAll replaces every non-overlapping, case-insensitive occurrence
// of the literal query in the active file and commits the result through
// Edit, so the replacement participates in undo/redo like any other edit.
// Returns the number of replacements; an empty query is a no-op.
func (s *Store) ReplaceAll(query, replacement string) int {
	if query == "" {
		return 0
	}
	active := s.ActiveFile()
	content := s.Select(active)

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		// QuoteMeta output always compiles; kept for completeness.
		s.logger.Warn("replace query failed to compile", "error", err)
		return 0
	}

	count := len(re.FindAllStringIndex(content, -1))
	if count == 0 {
		return 0
	}
	s.Edit(active, re.ReplaceAllLiteralString(content, replacement))
	return count
}
