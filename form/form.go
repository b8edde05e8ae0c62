package form

import "strings"

/*
 * Pure form codec for the configuration portal. The portal does not parse
 * the request into structured parts: fields are located by scanning the raw
 * accumulated text for "name=" markers, and values are percent-decoded in
 * place. No shared state, no allocation beyond the returned strings.
 */

// ExtractField locates marker (the field name including the trailing '=')
// in text and returns the raw value that follows it. The value runs to the
// next '&', or failing that the next whitespace, or the end of text. The
// second return reports whether the marker was present at all.
func ExtractField(text string, marker string) (string, bool) {
	i := strings.Index(text, marker)
	if i < 0 {
		return "", false
	}
	rest := text[i+len(marker):]
	if j := strings.IndexByte(rest, '&'); j >= 0 {
		return rest[:j], true
	}
	if j := strings.IndexAny(rest, " \t\r\n"); j >= 0 {
		return rest[:j], true
	}
	return rest, true
}

// PercentDecode undoes application/x-www-form-urlencoded escaping: '+'
// becomes a space and "%XY" (two hex digits) becomes the byte 0xXY. Anything
// else is copied verbatim, including malformed '%' sequences, so decoding
// already-decoded text containing neither '%' nor '+' is the identity.
func PercentDecode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(hexVal(s[i+1])<<4 | hexVal(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexVal(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}
