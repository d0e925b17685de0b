package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Directive
	}{
		{"SearchLimit", `SEARCH "abc" LIMIT 5`, []Directive{Search{Term: "abc"}, Limit{N: 5}}},
		{"CaseInsensitive", `search "abc" offset 2 LiMiT 1`, []Directive{Search{Term: "abc"}, Offset{N: 2}, Limit{N: 1}}},
		{"MaxDist", `MAXDIST 0.25 SEARCH "torque wrench"`, []Directive{MaxDistance{Threshold: 0.25}, Search{Term: "torque wrench"}}},
		{"ReturnSingle", `SEARCH "a" RETURN name`, []Directive{Search{Term: "a"}, Return{Fields: []string{"name"}}}},
		{"ReturnJoined", `SEARCH "a" RETURN name,manufacturer`, []Directive{Search{Term: "a"}, Return{Fields: []string{"name", "manufacturer"}}}},
		{"ReturnSpaced", `SEARCH "a" RETURN Name, Manufacturer LIMIT 3`, []Directive{Search{Term: "a"}, Return{Fields: []string{"name", "manufacturer"}}, Limit{N: 3}}},
		{"LimitOnlyParses", `LIMIT 5`, []Directive{Limit{N: 5}}},
		{"Empty", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directives, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, directives)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"SearchEOL", `SEARCH`, "SEARCH statement expects string, but EOL was given"},
		{"SearchWord", `SEARCH abc`, `SEARCH statement expects string, but "abc" was given`},
		{"LimitEOL", `SEARCH "a" LIMIT`, "LIMIT statement expects number, but EOL was given"},
		{"LimitNaN", `SEARCH "a" LIMIT five`, `LIMIT statement expects number, but "five" was given`},
		{"LimitQuoted", `SEARCH "a" LIMIT "5"`, `LIMIT statement expects number, but "5" was given`},
		{"LimitNegative", `SEARCH "a" LIMIT -1`, "non-negative"},
		{"OffsetFloat", `SEARCH "a" OFFSET 1.5`, `OFFSET statement expects number, but "1.5" was given`},
		{"MaxDistEOL", `MAXDIST`, "MAXDIST statement expects number, but EOL was given"},
		{"MaxDistNaN", `MAXDIST nan`, `MAXDIST statement expects number, but "nan" was given`},
		{"MaxDistNegative", `MAXDIST -0.5`, "non-negative"},
		{"ReturnEOL", `SEARCH "a" RETURN`, "RETURN statement expects a list of fields, but EOL was given"},
		{"ReturnDangling", `SEARCH "a" RETURN name,`, "RETURN statement expects a list of fields, but EOL was given"},
		{"ReturnLiteral", `SEARCH "a" RETURN "name"`, `RETURN statement expects field, but "name" was given`},
		{"ReturnOnlyCommas", `SEARCH "a" RETURN ,,`, "RETURN statement expects a list of fields, but EOL was given"},
		{"Unknown", `FIND "a"`, "unknown statement find"},
		{"LiteralKeyword", `"search"`, `unknown statement "search"`},
		{"Malformed", `SEARCH "a`, "malformed string literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directives, err := Parse(tt.input)
			require.Error(t, err)
			assert.Nil(t, directives)
			assert.ErrorIs(t, err, ErrQuery)
			assert.Contains(t, err.Error(), tt.msg)

			var qe *QueryError
			require.True(t, errors.As(err, &qe))
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse(`SEARCH "a" LIMIT x`)
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 17, qe.Pos)
	assert.Equal(t, `query: LIMIT statement expects number, but "x" was given (at 17)`, qe.Error())
}

func TestFormat(t *testing.T) {
	directives := []Directive{
		MaxDistance{Threshold: 0.3},
		Search{Term: `torque "pro" \ wrench`},
		Offset{N: 2},
		Limit{N: 10},
		Return{Fields: []string{"name", "manufacturer"}},
	}

	text := Format(directives)
	assert.Equal(t, `MAXDIST 0.3 SEARCH "torque \"pro\" \\ wrench" OFFSET 2 LIMIT 10 RETURN name,manufacturer`, text)

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, directives, parsed)
}
