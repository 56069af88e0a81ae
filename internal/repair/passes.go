package repair

import (
	"regexp"
	"strings"
)

// byteOrderMark is U+FEFF as it appears at the start of UTF-8 text.
const byteOrderMark = "\uFEFF"

var (
	trailingComma = regexp.MustCompile(`,(\s*[}\]])`)
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_$][A-Za-z0-9_$-]*)(\s*:)`)
	badLiteral    = regexp.MustCompile(`-Infinity\b|\b(?:undefined|NaN|Infinity)\b`)

	// a value's last token followed by whitespace holding a newline
	adjacentEnd = regexp.MustCompile(`([}\]"]|\d|true|false|null)(\s*\n\s*)`)
	// the first token of the next value
	adjacentStart = regexp.MustCompile(`^(?:[{\["]|\d|-|true|false|null)`)
)

func stripBOM(text string) string {
	return strings.TrimPrefix(text, byteOrderMark)
}

func removeTrailingCommas(text string) string {
	return outsideStrings(text, func(s string) string {
		return trailingComma.ReplaceAllString(s, "$1")
	})
}

// convertSingleQuotes rewrites 'single-quoted' strings as JSON strings when
// single quotes outnumber double quotes.
func convertSingleQuotes(text string) string {
	if strings.Count(text, "'") <= strings.Count(text, `"`) {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		switch text[i] {
		case '"':
			end := stringEnd(text, i, '"')
			sb.WriteString(text[i:min(end, len(text))])
			i = end
		case '\'':
			end := stringEnd(text, i, '\'')
			if end > len(text) {
				// unterminated
				sb.WriteString(text[i:])
				return sb.String()
			}
			sb.WriteByte('"')
			writeRequoted(&sb, text[i+1:end-1])
			sb.WriteByte('"')
			i = end
		default:
			sb.WriteByte(text[i])
			i++
		}
	}
	return sb.String()
}

// writeRequoted copies the body of a single-quoted string so it is valid
// between double quotes.
func writeRequoted(sb *strings.Builder, body string) {
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			sb.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			sb.WriteByte(c)
			sb.WriteByte(body[i+1])
			i++
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
}

func quoteBareKeys(text string) string {
	return outsideStrings(text, func(s string) string {
		return bareKey.ReplaceAllString(s, `$1"$2"$3`)
	})
}

// insertMissingCommas adds a comma where one value ends and another begins
// with only a line break between them. It looks at the raw text and does not
// skip string contents.
func insertMissingCommas(text string) string {
	matches := adjacentEnd.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		tokenEnd, gapEnd := m[3], m[5]
		if !adjacentStart.MatchString(text[gapEnd:]) {
			continue
		}
		sb.WriteString(text[last:tokenEnd])
		sb.WriteByte(',')
		last = tokenEnd
	}
	if last == 0 {
		return text
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func stripComments(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		switch {
		case text[i] == '"':
			end := stringEnd(text, i, '"')
			sb.WriteString(text[i:min(end, len(text))])
			i = end
		case strings.HasPrefix(text[i:], "//"):
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return sb.String()
			}
			i += nl
		case strings.HasPrefix(text[i:], "/*"):
			closing := strings.Index(text[i+2:], "*/")
			if closing < 0 {
				return sb.String()
			}
			i += 2 + closing + 2
		default:
			sb.WriteByte(text[i])
			i++
		}
	}
	return sb.String()
}

func replaceLiterals(text string) string {
	return outsideStrings(text, func(s string) string {
		return badLiteral.ReplaceAllString(s, "null")
	})
}

// outsideStrings applies fn to every stretch of text that is not inside a
// double- or single-quoted string. String contents are copied unchanged. An
// unterminated single quote is treated as an ordinary character.
func outsideStrings(text string, fn func(string) string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	start := 0
	for i := 0; i < len(text); {
		quote := text[i]
		if quote != '"' && quote != '\'' {
			i++
			continue
		}
		end := stringEnd(text, i, quote)
		if quote == '\'' && end > len(text) {
			i++
			continue
		}
		end = min(end, len(text))
		sb.WriteString(fn(text[start:i]))
		sb.WriteString(text[i:end])
		i, start = end, end
	}
	sb.WriteString(fn(text[start:]))
	return sb.String()
}

// stringEnd returns the index just past the closing quote of the string
// opened at text[open], or len(text)+1 when the string is unterminated.
func stringEnd(text string, open int, quote byte) int {
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(text) + 1
}
