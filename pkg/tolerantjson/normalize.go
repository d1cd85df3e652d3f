package tolerantjson

import "strings"

// Normalize rewrites string delimiters of a JSON-like document to double quotes.
// Quote characters inside a string that do not match the opening delimiter are
// kept as they are, and escaped characters are copied verbatim. Unterminated
// strings are not reported; the caller's JSON parser rejects them.
func Normalize(input string) string {
	if len(input) >= 2 && strings.HasPrefix(input, "'") && strings.HasSuffix(input, "'") {
		input = input[1 : len(input)-1]
	}

	var out strings.Builder
	out.Grow(len(input))

	inString := false
	escapeNext := false
	quoteChar := '"'

	for _, ch := range input {
		if escapeNext {
			out.WriteRune(ch)
			escapeNext = false
			continue
		}

		switch {
		case ch == '\\':
			escapeNext = true
			out.WriteRune(ch)
		case !inString && (ch == '"' || ch == '\''):
			inString = true
			quoteChar = ch
			out.WriteByte('"')
		case inString && ch == quoteChar:
			inString = false
			out.WriteByte('"')
		default:
			out.WriteRune(ch)
		}
	}

	return out.String()
}
