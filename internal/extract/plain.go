package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain splits content into pages on form feeds. Invalid UTF-8
// sequences are replaced with the replacement character.
func extractPlain(content []byte) ([]string, error) {
	s := string(content)
	if !utf8.Valid(content) {
		s = strings.ToValidUTF8(s, "\ufffd")
	}
	return strings.Split(s, formFeed), nil
}
