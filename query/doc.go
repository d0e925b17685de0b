// Package query implements the search directive language.
//
// A query is a single line of whitespace-separated directives:
//
//	SEARCH "<term>"
//	LIMIT <integer>
//	OFFSET <integer>
//	MAXDIST <float>
//	RETURN <field>[,<field>]*
//
// Keywords are case-insensitive. String literals are double-quoted, may
// contain spaces and use backslash escapes (\" and \\). Everything outside a
// literal is lower-cased.
//
// [Parse] turns a query into an ordered list of [Directive] values and
// [Compile] validates their order and folds them into a [Plan] that the
// search index executes:
//
//	plan, err := query.Compile(`SEARCH "wrnch" MAXDIST 0.3 LIMIT 10`)
//	if err != nil {
//	    var qe *query.QueryError
//	    if errors.As(err, &qe) { ... }
//	}
//
// All failures are reported as *QueryError and match ErrQuery with
// errors.Is. Parsing and compiling are pure; a failed call has no effect.
package query
