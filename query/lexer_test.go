package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "WordsAreLowerCased",
			input: "SEARCH Limit",
			expected: []Token{
				{Kind: TokenWord, Value: "search", Pos: 0},
				{Kind: TokenWord, Value: "limit", Pos: 7},
			},
		},
		{
			name:  "LiteralKeepsCaseAndSpaces",
			input: `search "Torque Wrench"`,
			expected: []Token{
				{Kind: TokenWord, Value: "search", Pos: 0},
				{Kind: TokenString, Value: "Torque Wrench", Pos: 7},
			},
		},
		{
			name:  "Escapes",
			input: `"say \"hi\" \\ \x"`,
			expected: []Token{
				{Kind: TokenString, Value: `say "hi" \ x`, Pos: 0},
			},
		},
		{
			name:  "LiteralGluedToWord",
			input: `search"abc"limit`,
			expected: []Token{
				{Kind: TokenWord, Value: "search", Pos: 0},
				{Kind: TokenString, Value: "abc", Pos: 6},
				{Kind: TokenWord, Value: "limit", Pos: 11},
			},
		},
		{
			name:  "Whitespace",
			input: "\t limit\n 5  ",
			expected: []Token{
				{Kind: TokenWord, Value: "limit", Pos: 2},
				{Kind: TokenWord, Value: "5", Pos: 9},
			},
		},
		{
			name:     "Empty",
			input:    "   ",
			expected: nil,
		},
		{
			name:  "EmptyLiteral",
			input: `""`,
			expected: []Token{
				{Kind: TokenString, Value: "", Pos: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestTokenize_MalformedLiteral(t *testing.T) {
	for _, input := range []string{`search "abc`, `"abc\"`, `"`} {
		_, err := Tokenize(input)
		require.Error(t, err, input)
		assert.ErrorIs(t, err, ErrQuery)
		assert.Contains(t, err.Error(), "malformed string literal")
	}
}
