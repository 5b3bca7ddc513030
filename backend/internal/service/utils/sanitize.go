package utils

import (
	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag and attribute and HTML-escapes the text it keeps.
var strict = bluemonday.StrictPolicy()

// SanitizeText makes user text safe to drop into HTML as is.
func SanitizeText(text string) string {
	return strict.Sanitize(text)
}
