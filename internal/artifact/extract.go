package artifact

import (
	"regexp"
	"strings"

	"github.com/atolyehq/atolye/internal/fileset"
)

var (
	// fenceRE matches one closed fenced code segment with an optional
	// language tag. Lazy content match means an opening fence without a
	// closer by end of input never matches.
	fenceRE = regexp.MustCompile("(?s)```(\\w+)?\\n?(.*?)```")

	// markerRE matches an explicit filename marker on the first content
	// line, e.g. "filename: app.js" or "// file: app.js".
	markerRE = regexp.MustCompile(`(?i)(?:filename|file|name):\s*([a-zA-Z0-9._-]+)`)

	// commentNameRE matches a leading single-line comment that carries a
	// bare filename, e.g. "// utils.js".
	commentNameRE = regexp.MustCompile(`^//\s*([a-zA-Z0-9_-]+\.[a-zA-Z0-9._-]+)\s*$`)
)

// defaultNames maps a fence language tag to a conventional filename.
var defaultNames = map[string]string{
	"html":       "index.html",
	"htm":        "index.html",
	"js":         "script.js",
	"javascript": "script.js",
	"css":        "style.css",
	"ts":         "script.ts",
	"typescript": "script.ts",
}

// Extract parses text for closed fenced code segments and returns them as
// a file set keyed by derived filename, in order of first appearance.
// Segments resolving to the same name overwrite silently (last write
// wins). A text with no closed fence yields an empty, non-nil set.
func Extract(text string) *fileset.Set {
	out := fileset.New()
	if !strings.Contains(text, "```") {
		return out
	}
	for _, m := range fenceRE.FindAllStringSubmatch(text, -1) {
		lang := strings.ToLower(m[1])
		content := strings.TrimSpace(m[2])
		out.Put(deriveName(content, lang), content)
	}
	return out
}

// deriveName resolves a filename for one fenced segment. The chain is
// deterministic so an ambiguous segment is never an error: explicit marker
// on the first line, then a leading filename comment, then the language
// default table, then file.<lang>, then artifact.txt.
func deriveName(content, lang string) string {
	firstLine, _, _ := strings.Cut(content, "\n")

	if m := markerRE.FindStringSubmatch(firstLine); m != nil {
		return m[1]
	}
	if m := commentNameRE.FindStringSubmatch(strings.TrimSpace(firstLine)); m != nil {
		return m[1]
	}
	if name, ok := defaultNames[lang]; ok {
		return name
	}
	if lang != "" {
		return "file." + lang
	}
	return "artifact.txt"
}
