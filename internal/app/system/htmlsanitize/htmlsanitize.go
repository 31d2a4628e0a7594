// Package htmlsanitize cleans user-supplied rich text before storage.
// Workspace notes accept a small set of formatting tags; everything
// else (scripts, event handlers, javascript: URLs) is stripped.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize returns s with unsafe HTML removed. Formatting tags commonly
// produced by rich-text editors (p, strong, em, lists, links) survive.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// StripTags removes all HTML, returning plain text. Used for fields
// that must never carry markup (task descriptions, profile fields).
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strict.Sanitize(s))
}
