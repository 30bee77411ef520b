package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SecureFilename reduces name to a flat, ASCII-only filename that is safe to
// join onto a directory. Compatibility characters are decomposed (NFKD) and
// anything outside ASCII is dropped, path separators and whitespace runs
// become a single underscore, and only letters, digits, '.', '_' and '-' are
// kept. Leading and trailing dots and underscores are trimmed, so the result
// can never be "..", hidden, or empty-looking; it may be "" when nothing
// survives.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range decomposed {
		switch {
		case r == '/' || r == '\\':
			ascii.WriteByte(' ')
		case r < unicode.MaxASCII:
			ascii.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(ascii.String()), "_")

	var b strings.Builder
	for _, r := range joined {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}
