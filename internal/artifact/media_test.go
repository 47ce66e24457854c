package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanMediaDirectives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "none",
			text: "plain reply",
			want: nil,
		},
		{
			name: "single",
			text: "Here: [GENERATE_IMAGE: a red fox] done",
			want: []string{"a red fox"},
		},
		{
			name: "multiple in order",
			text: "[GENERATE_IMAGE:first][GENERATE_IMAGE: second prompt ]",
			want: []string{"first", "second prompt"},
		},
		{
			name: "empty prompt skipped",
			text: "[GENERATE_IMAGE: ]",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ScanMediaDirectives(tt.text))
		})
	}
}

func TestStripMediaDirectives(t *testing.T) {
	t.Parallel()

	got := StripMediaDirectives("  Look: [GENERATE_IMAGE: a cat] and text [GENERATE_IMAGE: b] ")
	assert.Equal(t, "Look:  and text", got)

	assert.Equal(t, "", StripMediaDirectives("[GENERATE_IMAGE: only]"))
}
