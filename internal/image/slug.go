package image

import "strings"

// Slugify derives a URL-safe identifier from a title: the title is
// lower-cased, every maximal run of characters outside [a-z0-9] is replaced
// with a single '-', and leading/trailing '-' are trimmed.
//
// The mapping is deterministic and makes no uniqueness promise — collisions
// are the catalog's problem. A title with no ASCII alphanumerics yields the
// empty string, which Upload rejects.
func Slugify(title string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('-')
		}
		pending = false
		b.WriteRune(r)
	}
	return b.String()
}
