package utils

import (
	"strings"
)

// DeriveSlug converts a human event name into a URL-safe slug: lowercase,
// runs of non-alphanumeric characters collapsed to single hyphens, leading
// and trailing hyphens stripped. Pure function of its input.
func DeriveSlug(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))

	prevHyphen := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			prevHyphen = false
			continue
		}
		if !prevHyphen && b.Len() > 0 {
			b.WriteByte('-')
			prevHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
