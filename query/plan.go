package query

import "strings"

// StepKind is a stream operation applied after the search.
type StepKind int

const (
	StepLimit StepKind = iota
	StepOffset
)

// Step truncates (StepLimit) or skips (StepOffset) N results.
type Step struct {
	Kind StepKind
	N    int
}

// Plan is a validated query ready for execution.
type Plan struct {
	// Term is the search text of the SEARCH directive.
	Term string
	// Cutoff is the MAXDIST threshold, nil when the query has none. It
	// applies to the query's own search regardless of where MAXDIST appears.
	Cutoff *float64
	// Steps are LIMIT/OFFSET operations in textual order.
	Steps []Step
	// Fields are the RETURN projection, nil when absent.
	Fields []string
}

// Compile parses input and validates the directive order.
func Compile(input string) (Plan, error) {
	directives, err := Parse(input)
	if err != nil {
		return Plan{}, err
	}
	return Build(directives)
}

// Build validates directives and folds them into a Plan. SEARCH must occur
// exactly once and before any LIMIT or OFFSET. The last MAXDIST and the last
// RETURN win.
func Build(directives []Directive) (Plan, error) {
	var (
		plan     Plan
		searched bool
	)
	for _, d := range directives {
		switch d := d.(type) {
		case Search:
			if searched {
				return Plan{}, unexpected("SEARCH")
			}
			searched = true
			plan.Term = d.Term
		case Limit:
			if !searched {
				return Plan{}, unexpected("LIMIT")
			}
			plan.Steps = append(plan.Steps, Step{Kind: StepLimit, N: d.N})
		case Offset:
			if !searched {
				return Plan{}, unexpected("OFFSET")
			}
			plan.Steps = append(plan.Steps, Step{Kind: StepOffset, N: d.N})
		case MaxDistance:
			cutoff := d.Threshold
			plan.Cutoff = &cutoff
		case Return:
			plan.Fields = append([]string(nil), d.Fields...)
		}
	}
	if !searched {
		return Plan{}, &QueryError{Msg: "query is empty", Pos: -1}
	}
	return plan, nil
}

func unexpected(stmt string) *QueryError {
	return &QueryError{Msg: "unexpected " + stmt + " statement", Pos: -1}
}

// Window applies the steps to items in order.
func Window[T any](items []T, steps []Step) []T {
	for _, s := range steps {
		n := min(s.N, len(items))
		switch s.Kind {
		case StepLimit:
			items = items[:n]
		case StepOffset:
			items = items[n:]
		}
	}
	return items
}

// HasField reports whether the projection names field, ignoring case.
func (p Plan) HasField(field string) bool {
	for _, f := range p.Fields {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	return false
}
