// Package phone canonicalizes phone numbers for per-business matching.
// Formatting never survives: "+1 (555) 555-0123" and "15555550123" compare
// equal. Numbers are compared, not validated.
package phone

import "strings"

// Canonical strips everything but digits, keeping the country code when one
// was dialed. An empty result means no usable number was supplied.
func Canonical(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match reports whether two raw numbers refer to the same line.
func Match(a, b string) bool {
	ca, cb := Canonical(a), Canonical(b)
	if ca == "" || cb == "" {
		return false
	}
	return ca == cb
}
