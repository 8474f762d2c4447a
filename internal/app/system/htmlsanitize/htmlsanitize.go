// Package htmlsanitize strips markup from user-entered plain-text fields
// (titles and names) before they are stored.
package htmlsanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element; script and style bodies are dropped with
// their tags.
var strict = bluemonday.StrictPolicy()

// StripTags returns s with all markup removed. Entities that bluemonday
// escapes on output are decoded again so the stored value is plain text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(strict.Sanitize(s))
}
