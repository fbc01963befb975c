package image

import "fmt"

// Visibility governs who may read an image.
type Visibility string

const (
	// VisibilityPublic images are readable by anyone and listed on public pages.
	VisibilityPublic Visibility = "public"
	// VisibilityUnlisted images are readable by anyone who knows the slug,
	// but never appear in any listing offered to anonymous callers.
	VisibilityUnlisted Visibility = "unlisted"
	// VisibilityPrivate images are readable by authenticated users only.
	VisibilityPrivate Visibility = "private"
)

// DefaultVisibility is applied when a caller omits the field on upload.
const DefaultVisibility = VisibilityPublic

// ParseVisibility validates a caller-supplied visibility value.
// The empty string maps to DefaultVisibility.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "":
		return DefaultVisibility, nil
	case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		return Visibility(s), nil
	default:
		return "", fmt.Errorf("unknown visibility %q", s)
	}
}

// ReadableBy reports whether a caller with the given authentication state may
// read an image with this visibility. Authenticated callers read everything;
// anonymous callers read everything except private images — for unlisted
// images the slug itself acts as the access token.
func (v Visibility) ReadableBy(authenticated bool) bool {
	if authenticated {
		return true
	}
	return v == VisibilityPublic || v == VisibilityUnlisted
}
