package fuzzysearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PixelSnake/FuzzySearch/query"
)

// Query runs a query written in the directive language:
//
//	SEARCH "cordless drill" MAXDIST 0.4 OFFSET 10 LIMIT 10 RETURN name,brand
//
// MAXDIST applies to the search wherever it appears. LIMIT and OFFSET are
// applied to the ranked results in the order written. RETURN copies the
// stored tokens of the named fuzzy fields into Result.Fields.
//
// Malformed queries fail with an error matching query.ErrQuery.
func (ix *Index[T]) Query(ctx context.Context, text string) (results []Result, err error) {
	start := time.Now()
	defer func() {
		ix.metrics.RecordQuery(time.Since(start), err)
		ix.logger.LogQuery(ctx, text, len(results), err)
	}()

	plan, err := query.Compile(text)
	if err != nil {
		return nil, err
	}
	if err := ix.checkProjection(plan.Fields); err != nil {
		return nil, err
	}

	var opts []SearchOption
	if plan.Cutoff != nil {
		opts = append(opts, SearchWithCutoff(*plan.Cutoff))
	}
	results, err = ix.search(ctx, plan.Term, opts)
	if err != nil {
		return nil, err
	}
	results = query.Window(results, plan.Steps)

	if len(plan.Fields) > 0 {
		if err := ix.project(results, plan); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (ix *Index[T]) checkProjection(fields []string) error {
	for _, name := range fields {
		if _, ok := ix.fieldIndex(name); ok {
			continue
		}
		for _, f := range ix.schema.Fields {
			if strings.EqualFold(f.Name, name) {
				return &query.QueryError{Msg: fmt.Sprintf("field %q is not stored", name), Pos: -1}
			}
		}
		return &query.QueryError{Msg: fmt.Sprintf("unknown field %q", name), Pos: -1}
	}
	return nil
}

func (ix *Index[T]) project(results []Result, plan query.Plan) error {
	for i := range results {
		rec, err := ix.store.Get(results[i].ID)
		if err != nil {
			return translateError(err, len(ix.names))
		}
		fields := make(map[string][]string, len(plan.Fields))
		for fi, name := range ix.names {
			if plan.HasField(name) {
				fields[name] = rec.Fields[fi]
			}
		}
		results[i].Fields = fields
	}
	return nil
}
