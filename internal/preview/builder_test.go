package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atolyehq/atolye/internal/fileset"
)

func setOf(pairs ...string) *fileset.Set {
	s := fileset.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Put(pairs[i], pairs[i+1])
	}
	return s
}

func TestBuildWrapsFragment(t *testing.T) {
	t.Parallel()

	got := Build(setOf("index.html", "<h1>Hi</h1>"))

	assert.Contains(t, got, "<!DOCTYPE html>")
	assert.Contains(t, got, "<h1>Hi</h1>")
	assert.Contains(t, got, "<body>")
	assert.Contains(t, got, "cdn.tailwindcss.com")
	assert.Less(t, strings.Index(got, "<body>"), strings.Index(got, "<h1>Hi</h1>"),
		"fragment belongs inside the generated body")
}

func TestBuildInjectsIntoFullDocument(t *testing.T) {
	t.Parallel()

	got := Build(setOf(
		"index.html", "<html><head></head><body></body></html>",
		"style.css", "body{color:red}",
	))

	styleIdx := strings.Index(got, "<style>\nbody{color:red}\n</style>")
	headEnd := strings.Index(got, "</head>")
	assert.NotEqual(t, -1, styleIdx)
	assert.Less(t, styleIdx, headEnd, "stylesheet goes before </head>")
	assert.Equal(t, 1, strings.Count(got, "<!DOCTYPE html>")+strings.Count(got, "<html>"),
		"no boilerplate wrapping for a full document")
}

func TestBuildInjectsScriptBeforeBody(t *testing.T) {
	t.Parallel()

	got := Build(setOf(
		"index.html", "<html><body><p>x</p></body></html>",
		"app.js", "console.log(1)",
	))

	scriptIdx := strings.Index(got, "<script>\nconsole.log(1)\n</script>")
	bodyEnd := strings.Index(got, "</body>")
	assert.NotEqual(t, -1, scriptIdx)
	assert.Less(t, scriptIdx, bodyEnd)
}

func TestBuildFullDocumentFallbacks(t *testing.T) {
	t.Parallel()

	// <body with neither </head> nor </body>: style prepends, script appends.
	got := Build(setOf(
		"index.html", "<body><p>x</p>",
		"a.css", "p{margin:0}",
		"a.js", "alert(1)",
	))

	assert.True(t, strings.HasPrefix(got, "<style>\np{margin:0}\n</style>"))
	assert.True(t, strings.HasSuffix(got, "<script>\nalert(1)\n</script>"))
}

func TestBuildAggregatesInInsertionOrder(t *testing.T) {
	t.Parallel()

	got := Build(setOf(
		"z.css", "z{}",
		"index.html", "<div></div>",
		"a.css", "a{}",
		"main.ts", "let a=1",
		"comp.tsx", "let b=2",
		"notes.md", "# ignored",
	))

	assert.Contains(t, got, "z{}\na{}", "css joins in insertion order, not alphabetical")
	assert.Contains(t, got, "let a=1\nlet b=2", "ts and tsx feed the aggregate script")
	assert.NotContains(t, got, "# ignored", "non-css/script files play no part")
}

func TestBuildEmptySetYieldsMinimalDocument(t *testing.T) {
	t.Parallel()

	got := Build(fileset.New())
	assert.Contains(t, got, "<!DOCTYPE html>")
	assert.Contains(t, got, "</html>")
}

func TestBuildEntryPrefersIndexHTML(t *testing.T) {
	t.Parallel()

	got := Build(setOf(
		"other.html", "<span>other</span>",
		"index.html", "<span>index</span>",
	))
	assert.Contains(t, got, "<span>index</span>")
	assert.NotContains(t, got, "<span>other</span>")
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	set := setOf(
		"index.html", "<h1>App</h1>",
		"style.css", "h1{font-weight:900}",
		"script.js", "console.log('hi')",
	)

	assert.Equal(t, Build(set), Build(set))
}

func TestBuildDetectsFullDocumentCaseInsensitively(t *testing.T) {
	t.Parallel()

	got := Build(setOf("index.html", "<HTML><BODY>x</BODY></HTML>"))
	assert.NotContains(t, got, "<!DOCTYPE html>\n<html>\n<head>",
		"uppercase markup is still a full document")
}
