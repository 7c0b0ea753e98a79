package expression

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.text)
}

// twoCharOps must be matched before their single character prefixes.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const singleCharOps = "+-*/%()?:,<>!"

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isDigit(r) || (r == '.' && i+1 < len(runes) && isDigit(runes[i+1])):
			start := i
			seenDot := false
			for i < len(runes) && (isDigit(runes[i]) || (runes[i] == '.' && !seenDot)) {
				if runes[i] == '.' {
					seenDot = true
				}
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[start:i]), pos: start})
		case r == '\'' || r == '"':
			text, end, err := scanString(runes, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text, pos: i})
			i = end
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || isDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			op := matchOp(runes[i:])
			if op == "" {
				return nil, fmt.Errorf("unexpected character %q at offset %d", r, i)
			}
			tokens = append(tokens, token{kind: tokOp, text: op, pos: i})
			i += len([]rune(op))
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(runes)}), nil
}

func matchOp(rest []rune) string {
	if len(rest) >= 2 {
		pair := string(rest[:2])
		for _, op := range twoCharOps {
			if pair == op {
				return op
			}
		}
	}
	if strings.ContainsRune(singleCharOps, rest[0]) {
		return string(rest[0])
	}
	return ""
}

// scanString reads a quoted literal starting at runes[start] and returns
// its unescaped text and the offset after the closing quote.
func scanString(runes []rune, start int) (string, int, error) {
	quote := runes[start]
	var b strings.Builder
	for i := start + 1; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == quote:
			return b.String(), i + 1, nil
		case r == '\\':
			i++
			if i >= len(runes) {
				return "", 0, fmt.Errorf("unterminated string at offset %d", start)
			}
			switch runes[i] {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '\\', '\'', '"':
				b.WriteRune(runes[i])
			default:
				return "", 0, fmt.Errorf("unknown escape \\%c at offset %d", runes[i], i-1)
			}
		default:
			b.WriteRune(r)
		}
	}
	return "", 0, fmt.Errorf("unterminated string at offset %d", start)
}
