package query

import (
	"strconv"
	"strings"
)

// Directive is one parsed instruction of a query.
type Directive interface {
	// String renders the directive in query syntax.
	String() string
	directive()
}

// Search starts a result stream for Term.
type Search struct {
	Term string
}

// Limit keeps at most N results of the stream.
type Limit struct {
	N int
}

// Offset skips the first N results of the stream.
type Offset struct {
	N int
}

// MaxDistance sets the acceptance cutoff for the query's search.
type MaxDistance struct {
	Threshold float64
}

// Return names the fields to project onto each result.
type Return struct {
	Fields []string
}

func (Search) directive()      {}
func (Limit) directive()       {}
func (Offset) directive()      {}
func (MaxDistance) directive() {}
func (Return) directive()      {}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func (d Search) String() string {
	return `SEARCH "` + literalEscaper.Replace(d.Term) + `"`
}

func (d Limit) String() string { return "LIMIT " + strconv.Itoa(d.N) }

func (d Offset) String() string { return "OFFSET " + strconv.Itoa(d.N) }

func (d MaxDistance) String() string {
	return "MAXDIST " + strconv.FormatFloat(d.Threshold, 'g', -1, 64)
}

func (d Return) String() string { return "RETURN " + strings.Join(d.Fields, ",") }

// Format renders directives as a query string that parses back to the same
// directives.
func Format(directives []Directive) string {
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}
