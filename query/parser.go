package query

import (
	"math"
	"strconv"
	"strings"
)

// Parse tokenizes input and parses it into directives in textual order.
// It does not check directive ordering; see Compile.
func Parse(input string) ([]Directive, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, end: len(input)}
	return p.parse()
}

type parser struct {
	tokens []Token
	pos    int
	end    int
}

func (p *parser) parse() ([]Directive, error) {
	var out []Directive
	for p.pos < len(p.tokens) {
		kw := p.tokens[p.pos]
		p.pos++
		if kw.Kind != TokenWord {
			return nil, errorf(kw.Pos, "unknown statement %q", kw.Value)
		}

		var (
			d   Directive
			err error
		)
		switch kw.Value {
		case "search":
			d, err = p.parseSearch()
		case "limit":
			var n int
			n, err = p.parseCount("LIMIT")
			d = Limit{N: n}
		case "offset":
			var n int
			n, err = p.parseCount("OFFSET")
			d = Offset{N: n}
		case "maxdist":
			d, err = p.parseMaxDistance()
		case "return":
			d, err = p.parseReturn()
		default:
			return nil, errorf(kw.Pos, "unknown statement %s", kw.Value)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (p *parser) next(stmt, want string) (Token, error) {
	if p.pos >= len(p.tokens) {
		return Token{}, errorf(p.end, "%s statement expects %s, but EOL was given", stmt, want)
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, nil
}

func (p *parser) parseSearch() (Directive, error) {
	tok, err := p.next("SEARCH", "string")
	if err != nil {
		return nil, err
	}
	if tok.Kind != TokenString {
		return nil, errorf(tok.Pos, "SEARCH statement expects string, but %q was given", tok.Value)
	}
	return Search{Term: tok.Value}, nil
}

func (p *parser) parseCount(stmt string) (int, error) {
	tok, err := p.next(stmt, "number")
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok.Value)
	if tok.Kind != TokenWord || convErr != nil {
		return 0, errorf(tok.Pos, "%s statement expects number, but %q was given", stmt, tok.Value)
	}
	if n < 0 {
		return 0, errorf(tok.Pos, "%s statement expects a non-negative number, but %d was given", stmt, n)
	}
	return n, nil
}

func (p *parser) parseMaxDistance() (Directive, error) {
	tok, err := p.next("MAXDIST", "number")
	if err != nil {
		return nil, err
	}
	f, convErr := strconv.ParseFloat(tok.Value, 64)
	if tok.Kind != TokenWord || convErr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errorf(tok.Pos, "MAXDIST statement expects number, but %q was given", tok.Value)
	}
	if f < 0 {
		return nil, errorf(tok.Pos, "MAXDIST statement expects a non-negative number, but %q was given", tok.Value)
	}
	return MaxDistance{Threshold: f}, nil
}

// parseReturn consumes a comma-joined run of field names. A token ending in
// a comma continues the run.
func (p *parser) parseReturn() (Directive, error) {
	var fields []string
	for {
		tok, err := p.next("RETURN", "a list of fields")
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokenWord {
			return nil, errorf(tok.Pos, "RETURN statement expects field, but %q was given", tok.Value)
		}
		for _, f := range strings.Split(tok.Value, ",") {
			if f != "" {
				fields = append(fields, f)
			}
		}
		if !strings.HasSuffix(tok.Value, ",") {
			break
		}
	}
	if len(fields) == 0 {
		return nil, errorf(p.end, "RETURN statement expects a list of fields")
	}
	return Return{Fields: fields}, nil
}
