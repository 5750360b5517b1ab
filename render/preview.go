package render

import "unicode/utf8"

// PreviewLimit is the preview length, in characters, used by page listings.
const PreviewLimit = 256

// TrimPreview returns at most limit characters of text. The cut always falls
// on a character boundary.
func TrimPreview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) < limit {
		return text
	}

	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
