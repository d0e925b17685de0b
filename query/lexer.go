package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind distinguishes plain words from string literals.
type TokenKind int

const (
	TokenWord   TokenKind = iota // whitespace-delimited run, lower-cased
	TokenString                  // double-quoted literal, unescaped
)

// Token is a lexical token of a query.
type Token struct {
	Kind  TokenKind
	Value string
	Pos   int
}

// Tokenize splits input into words and string literals.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	pos := 0
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		switch {
		case unicode.IsSpace(r):
			pos += size
		case r == '"':
			lit, end, ok := scanString(input, pos)
			if !ok {
				return nil, errorf(pos, "malformed string literal")
			}
			tokens = append(tokens, Token{Kind: TokenString, Value: lit, Pos: pos})
			pos = end
		default:
			start := pos
			for pos < len(input) {
				r, size := utf8.DecodeRuneInString(input[pos:])
				if unicode.IsSpace(r) || r == '"' {
					break
				}
				pos += size
			}
			tokens = append(tokens, Token{
				Kind:  TokenWord,
				Value: strings.ToLower(input[start:pos]),
				Pos:   start,
			})
		}
	}
	return tokens, nil
}

// scanString scans the literal opening at input[start] and returns its
// unescaped content and the offset just past the closing quote.
func scanString(input string, start int) (string, int, bool) {
	var sb strings.Builder
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		switch {
		case escaped:
			sb.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			return sb.String(), i + 1, true
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, false
}
