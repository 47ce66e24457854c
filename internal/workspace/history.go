package workspace

// history is the per-file undo/redo stack. stack holds content snapshots,
// index the current position. Invariants: 0 <= index < len(stack) whenever
// the stack is non-empty; the stack never exceeds the configured depth
// (oldest evicted first); pushing discards any redo tail.
//
// A history starts empty with index -1 and receives its first snapshot on
// the first committed checkpoint.
type history struct {
	stack []string
	index int
}

func newHistory() *history {
	return &history{index: -1}
}

// seeded returns a history holding exactly the given content, used when a
// file set is loaded wholesale.
func seeded(content string) *history {
	return &history{stack: []string{content}, index: 0}
}

// push commits a snapshot. The push is suppressed when content equals the
// current snapshot (no-op edits do not grow history and keep the redo tail
// intact); otherwise the tail beyond index is dropped first.
func (h *history) push(content string, depth int) {
	if h.index >= 0 && h.stack[h.index] == content {
		return
	}
	h.stack = h.stack[:h.index+1]
	h.stack = append(h.stack, content)
	if len(h.stack) > depth {
		h.stack = h.stack[1:]
	}
	h.index = len(h.stack) - 1
}

// undo moves back one snapshot. Returns the restored content, or ok=false
// at the boundary (a no-op, never an error).
func (h *history) undo() (string, bool) {
	if h.index <= 0 {
		return "", false
	}
	h.index--
	return h.stack[h.index], true
}

// redo moves forward one snapshot. Returns the restored content, or
// ok=false at the boundary.
func (h *history) redo() (string, bool) {
	if h.index >= len(h.stack)-1 {
		return "", false
	}
	h.index++
	return h.stack[h.index], true
}
