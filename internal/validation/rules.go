// Package validation holds the field shape rules shared by lead forms and the
// bulk importer.
package validation

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

// ValidEmail reports whether s has a plausible email shape.
func ValidEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

// ValidWebsite reports whether s carries an explicit http(s) scheme.
func ValidWebsite(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ValidLinkedIn reports whether s points at linkedin.com.
func ValidLinkedIn(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "https://www.linkedin.com/") ||
		strings.HasPrefix(s, "https://linkedin.com/") ||
		strings.HasPrefix(s, "http://www.linkedin.com/") ||
		strings.HasPrefix(s, "http://linkedin.com/")
}

// ValidPhone reports whether s contains 8 to 15 digits, ignoring separators
// and a leading plus sign.
func ValidPhone(s string) bool {
	n := len(digitRe.FindAllString(s, -1))
	return n >= 8 && n <= 15
}
