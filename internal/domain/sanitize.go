package domain

import "strings"

// Sanitize strips angle brackets and surrounding whitespace from
// user-supplied text. It keeps stored evidence and derived identifiers
// free of HTML injection vectors.
func Sanitize(input string) string {
	replacer := strings.NewReplacer("<", "", ">", "")
	return strings.TrimSpace(replacer.Replace(input))
}
