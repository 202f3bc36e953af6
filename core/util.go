package core

import (
	"strings"

	"github.com/gosimple/slug"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Slugify turns a title into a lowercase, dash separated ascii identifier.
//	"5. Sınıf Matematik" -> "5-sinif-matematik"
func Slugify(s string) string {
	return slug.MakeLang(CleanString(s), "tr")
}
