package fileset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedProject is returned by Import when the serialized document is
// not a JSON object. Check with errors.Is().
var ErrMalformedProject = errors.New("malformed project document")

// Export serializes the Set as a JSON object whose keys are file names and
// values are file contents, pretty-printed with 2-space indentation. Key
// order is the Set's insertion order and HTML characters are not escaped,
// so Import(Export(s)) round-trips bit-exact.
func Export(s *Set) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		if err := encodeString(&buf, name); err != nil {
			return nil, err
		}
		buf.WriteString(": ")
		if err := encodeString(&buf, s.files[name]); err != nil {
			return nil, err
		}
	}
	if len(s.order) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString writes one JSON string without HTML escaping and without the
// trailing newline json.Encoder appends.
func encodeString(buf *bytes.Buffer, v string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Truncate(buf.Len() - 1) // drop Encode's newline
	return nil
}

// Import parses a serialized project document into a Set, preserving the
// document's key order. The top-level value must be a JSON object;
// anything else (including null) fails with ErrMalformedProject. Values
// are coerced to strings: non-string scalars keep their literal JSON text
// and null becomes the empty string.
func Import(data []byte) (*Set, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedProject)
	}

	s := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: non-string key", ErrMalformedProject)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
		}
		s.Put(name, coerceString(raw))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProject, err)
	}
	return s, nil
}

// coerceString turns an arbitrary JSON value into file content. Strings
// decode normally; null is empty; numbers, booleans, arrays and objects
// keep their literal JSON text.
func coerceString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var v string
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return trimmed
}
