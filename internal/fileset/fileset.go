// Package fileset provides the ordered named-buffer collection that backs
// one project's buildable surface.
//
// A Set maps file names to content strings. Ordering is the insertion order
// of first appearance, not alphabetical; writing to an existing name
// replaces the content but keeps the original position. An empty-string
// file is valid and distinct from an absent file; a Set never holds a
// "missing" value for a present name.
package fileset

import "strings"

// Set is an ordered mapping of file name to content.
//
// The zero value is not useful; use New().
// Set is not safe for concurrent use — the owning workspace store
// synchronizes access.
type Set struct {
	order []string
	files map[string]string
}

// New creates an empty Set.
func New() *Set {
	return &Set{files: make(map[string]string)}
}

// Put inserts or replaces a file. A replaced file keeps its position in
// insertion order (last write wins on content only).
func (s *Set) Put(name, content string) {
	if _, ok := s.files[name]; !ok {
		s.order = append(s.order, name)
	}
	s.files[name] = content
}

// Get returns the content for name and whether the file exists.
func (s *Set) Get(name string) (string, bool) {
	c, ok := s.files[name]
	return c, ok
}

// Has reports whether the file exists.
func (s *Set) Has(name string) bool {
	_, ok := s.files[name]
	return ok
}

// Len returns the number of files.
func (s *Set) Len() int {
	return len(s.order)
}

// Names returns the file names in insertion order. The slice is a copy.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Clone returns a deep copy of the Set, preserving order.
func (s *Set) Clone() *Set {
	c := New()
	for _, name := range s.order {
		c.Put(name, s.files[name])
	}
	return c
}

// EntryFile returns the name of the entry HTML file: a file literally named
// "index.html" if present, else the first file whose name ends in ".html"
// (case-insensitive), else the first file in insertion order. The second
// return is false only for an empty Set.
func (s *Set) EntryFile() (string, bool) {
	if s.Has("index.html") {
		return "index.html", true
	}
	for _, name := range s.order {
		if strings.HasSuffix(strings.ToLower(name), ".html") {
			return name, true
		}
	}
	if len(s.order) > 0 {
		return s.order[0], true
	}
	return "", false
}

// Seed content for a fresh project context, shown before any artifact has
// been extracted into the workspace.
const (
	seedHTML = "<div class=\"flex items-center justify-center min-h-screen bg-zinc-50\">\n" +
		"  <div class=\"p-12 bg-white rounded-3xl shadow-xl border border-zinc-100 text-center\">\n" +
		"    <h1 class=\"text-4xl font-black tracking-tighter mb-4 text-black italic underline decoration-zinc-200 decoration-8 underline-offset-8\">Studio Ready</h1>\n" +
		"    <p class=\"text-zinc-500 font-medium\">Select a project to start building.</p>\n" +
		"  </div>\n" +
		"</div>"
	seedCSS = "/* Custom Styles */\nbody {\n  background: #fafafa;\n}"
	seedJS  = "// script.js\nconsole.log(\"Artifact Studio Loaded\");"
)

// Seed returns the default Set a project context starts with.
func Seed() *Set {
	s := New()
	s.Put("index.html", seedHTML)
	s.Put("style.css", seedCSS)
	s.Put("script.js", seedJS)
	return s
}
