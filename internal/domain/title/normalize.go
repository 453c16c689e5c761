package title

import "strings"

// Normalize reduces a raw title to its canonical comparable form: lower-cased,
// stripped of every character that is not an ASCII letter, digit or space, and
// trimmed. All similarity scoring runs on normalized text, never raw input.
// Total and idempotent.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
