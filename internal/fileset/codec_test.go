package fileset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFormat(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put("index.html", "<h1>Hi</h1>")
	s.Put("style.css", "body{color:red}")

	out, err := Export(s)
	require.NoError(t, err)

	want := "{\n  \"index.html\": \"<h1>Hi</h1>\",\n  \"style.css\": \"body{color:red}\"\n}"
	assert.Equal(t, want, string(out))
}

func TestExportEmptySet(t *testing.T) {
	t.Parallel()

	out, err := Export(New())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put("z.html", "<body>\n\"quoted\" & <tags>\n</body>")
	s.Put("a.js", "")
	s.Put("m.css", "/* çok güzel */")

	out, err := Export(s)
	require.NoError(t, err)

	got, err := Import(out)
	require.NoError(t, err)

	assert.Equal(t, s.Names(), got.Names())
	for _, name := range s.Names() {
		wantContent, _ := s.Get(name)
		gotContent, _ := got.Get(name)
		assert.Equal(t, wantContent, gotContent, "content mismatch for %s", name)
	}

	// Re-export must be bit-exact.
	out2, err := Export(got)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestImportMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "null", in: "null"},
		{name: "array", in: `["a"]`},
		{name: "string", in: `"files"`},
		{name: "number", in: "42"},
		{name: "truncated", in: `{"a": "b"`},
		{name: "garbage", in: "not json"},
		{name: "empty input", in: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Import([]byte(tt.in))
			assert.ErrorIs(t, err, ErrMalformedProject)
		})
	}
}

func TestImportCoercesValues(t *testing.T) {
	t.Parallel()

	got, err := Import([]byte(`{"a.txt": 42, "b.txt": null, "c.txt": true, "d.txt": "text"}`))
	require.NoError(t, err)

	want := map[string]string{"a.txt": "42", "b.txt": "", "c.txt": "true", "d.txt": "text"}
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt", "d.txt"}, got.Names())
	for name, content := range want {
		v, ok := got.Get(name)
		assert.True(t, ok)
		assert.Equal(t, content, v)
	}
}

func TestImportPreservesDocumentOrder(t *testing.T) {
	t.Parallel()

	got, err := Import([]byte(`{"z.js": "1", "a.html": "2", "m.css": "3"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"z.js", "a.html", "m.css"}, got.Names())
}
