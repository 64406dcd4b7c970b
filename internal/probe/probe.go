// Package probe holds helpers shared by the URL probing strategies.
package probe

import "strings"

// SameURL reports whether a final navigated URL is the same address as the
// requested one. A trailing-slash-only difference does not count as a
// redirect.
func SameURL(requested, final string) bool {
	return strings.TrimSuffix(requested, "/") == strings.TrimSuffix(final, "/")
}
