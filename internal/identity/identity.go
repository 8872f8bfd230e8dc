// internal/identity/identity.go
package identity

// Normalize reduces a brand or company string to its canonical identity
// token: lowercase with every character outside [a-z0-9] removed. Two
// strings refer to the same entity iff their normalized forms are equal.
// This is the only matching mechanism in the pipeline - no fuzzy matching,
// no alias tables.
func Normalize(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c)
		case c >= '0' && c <= '9':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		}
	}
	return string(out)
}

// Match reports whether two strings identify the same entity under Normalize.
func Match(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// ValidSlug reports whether s is a usable company slug: at least 3
// characters, all within [a-z0-9].
func ValidSlug(s string) bool {
	if len(s) < 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
