package genre

import "github.com/gosimple/slug"

// Slugify converts a display name to a URL-safe identifier.
// "Post Rock" -> "post-rock".
// "Ambient & Experimental" -> "ambient-and-experimental".
func Slugify(s string) string {
	return slug.Make(s)
}
