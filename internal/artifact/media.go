package artifact

import (
	"regexp"
	"strings"
)

// mediaRE matches inline image generation directives the model emits when
// the image capability is enabled, e.g. "[GENERATE_IMAGE: a red fox]".
var mediaRE = regexp.MustCompile(`\[GENERATE_IMAGE:\s*(.*?)\]`)

// ScanMediaDirectives returns the prompts of all image directives in text,
// in order of appearance.
func ScanMediaDirectives(text string) []string {
	var prompts []string
	for _, m := range mediaRE.FindAllStringSubmatch(text, -1) {
		if p := strings.TrimSpace(m[1]); p != "" {
			prompts = append(prompts, p)
		}
	}
	return prompts
}

// StripMediaDirectives removes all image directives from text and trims
// the result. Used before saving a reply as a snippet or extracting
// artifacts from it.
func StripMediaDirectives(text string) string {
	return strings.TrimSpace(mediaRE.ReplaceAllString(text, ""))
}
