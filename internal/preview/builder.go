// Package preview synthesizes a single executable HTML document from a
// project's file set and manages the revocable handles it is served under.
package preview

import (
	"strings"

	"github.com/atolyehq/atolye/internal/fileset"
)

// scriptExts are the extensions whose files feed the aggregate script.
var scriptExts = []string{".js", ".ts", ".jsx", ".tsx"}

// Build deterministically assembles one self-contained HTML document from
// the file set: the entry HTML file carries the markup, every .css file
// joins the aggregate stylesheet and every script file the aggregate
// script, both in insertion order. A full document (containing <html or
// <body) gets the aggregates injected; anything else is wrapped in the
// standard boilerplate. Identical input yields byte-identical output.
func Build(set *fileset.Set) string {
	entry := entryHTML(set)

	var css, js []string
	for _, name := range set.Names() {
		lower := strings.ToLower(name)
		content, _ := set.Get(name)
		switch {
		case strings.HasSuffix(lower, ".css"):
			css = append(css, content)
		case hasScriptExt(lower):
			js = append(js, content)
		}
	}
	allCSS := strings.Join(css, "\n")
	allJS := strings.Join(js, "\n")

	if isFullDocument(entry) {
		return injectIntoDocument(entry, allCSS, allJS)
	}
	return wrapFragment(entry, allCSS, allJS)
}

// entryHTML returns the markup of the entry file: index.html, else the
// first .html file. With no HTML file at all the preview still renders —
// an empty fragment wrapped in boilerplate — rather than erroring.
func entryHTML(set *fileset.Set) string {
	if content, ok := set.Get("index.html"); ok {
		return content
	}
	for _, name := range set.Names() {
		if strings.HasSuffix(strings.ToLower(name), ".html") {
			content, _ := set.Get(name)
			return content
		}
	}
	return ""
}

func hasScriptExt(name string) bool {
	for _, ext := range scriptExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// isFullDocument reports whether the markup already is a complete page.
func isFullDocument(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

// injectIntoDocument inserts the aggregate stylesheet before the first
// </head> (prepended to the whole document when absent) and the aggregate
// script before the first </body> (appended when absent).
func injectIntoDocument(html, css, js string) string {
	cssTag := "<style>\n" + css + "\n</style>"
	jsTag := "<script>\n" + js + "\n</script>"

	if strings.Contains(html, "</head>") {
		html = strings.Replace(html, "</head>", cssTag+"\n</head>", 1)
	} else {
		html = cssTag + html
	}
	if strings.Contains(html, "</body>") {
		html = strings.Replace(html, "</body>", jsTag+"\n</body>", 1)
	} else {
		html += jsTag
	}
	return html
}

// wrapFragment embeds a markup fragment in the standard preview template.
func wrapFragment(fragment, css, js string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <script src="https://cdn.tailwindcss.com"></script>
  <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700;800&swap" rel="stylesheet">
  <style>
    body { font-family: 'Inter', sans-serif; margin: 0; min-height: 100vh; }
    `)
	b.WriteString(css)
	b.WriteString(`
  </style>
</head>
<body>
  `)
	b.WriteString(fragment)
	b.WriteString(`
  <script>`)
	b.WriteString(js)
	b.WriteString(`</script>
</body>
</html>`)
	return b.String()
}
