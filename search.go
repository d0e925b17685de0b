package fuzzysearch

import (
	"cmp"
	"context"
	"errors"
	"iter"
	"math"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PixelSnake/FuzzySearch/cache"
	"github.com/PixelSnake/FuzzySearch/distance"
	"github.com/PixelSnake/FuzzySearch/internal/store"
)

// scanChunk is the number of records handed to one scoring goroutine.
const scanChunk = 256

// Highlight locates the stored token that best matched a query term.
type Highlight struct {
	// Term is the query term.
	Term string
	// Field is the name of the fuzzy field holding the token.
	Field string
	// Token is the token's index within Field.
	Token int
	// Offset is the token's index within all fuzzy tokens of the record,
	// fields concatenated in schema order.
	Offset int
	// Length is the token's length in runes.
	Length int
}

// Result is a scored search hit.
type Result struct {
	ID uint64
	// Score is the mean distance of the query terms to their best matching
	// tokens. Lower is better.
	Score float64
	// Highlight is the best matching term's location.
	Highlight Highlight
	// Highlights holds one location per query term, in query order.
	Highlights []Highlight
	// Fields holds the tokens of fields selected by a RETURN directive.
	Fields map[string][]string
}

type hit struct {
	seq  int
	best Highlight
	all  []Highlight
}

// Find scores every stored record against text and returns the matches
// ordered by ascending score. Records with equal scores keep their append
// order. A record matches when every whitespace-separated term of text is
// accepted by at least one token of a fuzzy field.
func (ix *Index[T]) Find(ctx context.Context, text string, opts ...SearchOption) ([]Result, error) {
	var results []Result
	for r, err := range ix.FindSeq(ctx, text, opts...) {
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// FindSeq is like Find but yields results lazily. Scoring happens when the
// sequence is first iterated.
func (ix *Index[T]) FindSeq(ctx context.Context, text string, opts ...SearchOption) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		results, err := ix.search(ctx, text, opts)
		if err != nil {
			yield(Result{}, err)
			return
		}
		for _, r := range results {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (ix *Index[T]) search(ctx context.Context, text string, optFns []SearchOption) (results []Result, err error) {
	start := time.Now()
	defer func() {
		ix.metrics.RecordSearch(len(results), time.Since(start), err)
		ix.logger.LogSearch(ctx, text, len(results), time.Since(start), err)
	}()

	if ix.closed.Load() {
		return nil, ErrClosed
	}

	so := searchOptions{cutoff: ix.opts.cutoff, distance: ix.opts.distance}
	for _, fn := range optFns {
		if fn != nil {
			fn(&so)
		}
	}
	if err := checkCutoff(so.cutoff); err != nil {
		return nil, err
	}

	terms := Tokenize(text)
	if len(terms) == 0 {
		return nil, nil
	}

	if err := ix.rc.AcquireQuery(ctx); err != nil {
		return nil, err
	}
	defer ix.rc.ReleaseQuery()

	scores, hits, err := ix.score(ctx, terms, distance.NewComputer(so.distance, so.cutoff))
	if err != nil {
		return nil, err
	}

	results = make([]Result, 0, scores.Hits())
	for id, score := range scores.Ordered() {
		h := hits[id]
		results = append(results, Result{
			ID:         id,
			Score:      score,
			Highlight:  h.best,
			Highlights: h.all,
		})
	}
	// Ties keep append order regardless of which worker finished first.
	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(a.Score, b.Score); c != 0 {
			return c
		}
		return cmp.Compare(hits[a.ID].seq, hits[b.ID].seq)
	})
	return results, nil
}

// score evaluates every stored record. Records are streamed from the store
// in chunks and scored concurrently.
func (ix *Index[T]) score(ctx context.Context, terms []string, comp *distance.Computer) (*cache.Results[uint64, float64], map[uint64]hit, error) {
	var (
		scores = cache.NewResults[uint64, float64]()
		hitsMu sync.Mutex
		hits   = make(map[uint64]hit)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.parallelism)

	submit := func(chunk []store.Record, base int) {
		g.Go(func() error {
			for i, rec := range chunk {
				if err := gctx.Err(); err != nil {
					return err
				}
				scores.ComputeOK(rec.ID, func(uint64) (float64, bool) {
					s, h, ok := ix.scoreRecord(rec, terms, comp)
					if ok {
						h.seq = base + i
						hitsMu.Lock()
						hits[rec.ID] = h
						hitsMu.Unlock()
					}
					return s, ok
				})
			}
			return nil
		})
	}

	var (
		scanErr error
		seq     int
		chunk   = make([]store.Record, 0, scanChunk)
	)
	for rec, err := range ix.store.Scan() {
		if err != nil {
			if errors.Is(err, store.ErrCorrupt) {
				ix.logger.WarnContext(ctx, "data log scan stopped early", "error", err)
			} else {
				scanErr = err
			}
			break
		}
		if gctx.Err() != nil {
			break
		}
		chunk = append(chunk, rec)
		if len(chunk) == scanChunk {
			submit(chunk, seq)
			seq += len(chunk)
			chunk = make([]store.Record, 0, scanChunk)
		}
	}
	if len(chunk) > 0 {
		submit(chunk, seq)
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if scanErr != nil {
		return nil, nil, translateError(scanErr, len(ix.names))
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return scores, hits, nil
}

// scoreRecord returns the mean distance of terms to rec. For each term the
// smallest accepted distance over all fuzzy fields counts; the first field
// wins ties. ok is false when some term matches no field.
func (ix *Index[T]) scoreRecord(rec store.Record, terms []string, comp *distance.Computer) (score float64, h hit, ok bool) {
	h.all = make([]Highlight, len(terms))
	bestDist := math.Inf(1)

	var sum float64
	for ti, term := range terms {
		termDist := math.Inf(1)
		offset := 0
		for fi, tokens := range rec.Fields {
			if m, accepted := comp.BestMatch(tokens, term); accepted && m.Distance < termDist {
				termDist = m.Distance
				h.all[ti] = Highlight{
					Term:   term,
					Field:  ix.names[fi],
					Token:  m.Index,
					Offset: offset + m.Index,
					Length: m.Length,
				}
				if termDist == 0 {
					break
				}
			}
			offset += len(tokens)
		}
		if math.IsInf(termDist, 1) {
			return 0, hit{}, false
		}
		if termDist < bestDist {
			bestDist = termDist
			h.best = h.all[ti]
		}
		sum += termDist
	}
	return sum / float64(len(terms)), h, true
}
