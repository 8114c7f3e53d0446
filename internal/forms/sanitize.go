package forms

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeDescription strips all markup from a free-text description.
// Tags are removed outright, so an image tag with no text content
// sanitizes to the empty string.
func SanitizeDescription(description string) string {
	cleaned := strictPolicy.Sanitize(description)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
