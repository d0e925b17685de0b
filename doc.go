// Package fuzzysearch provides an embedded fuzzy full-text search engine.
//
// Records of any type are described by a Schema: an id accessor and a list
// of fields, some of which are fuzzy. The tokens of fuzzy fields are stored
// in an append-only data log; every search scores all stored records by
// edit distance and returns them ranked.
//
// # Quick Start
//
//	type Product struct {
//	    ID    uint64
//	    Brand string
//	    Name  string
//	}
//
//	schema := fuzzysearch.Schema[Product]{
//	    ID: func(p Product) uint64 { return p.ID },
//	    Fields: []fuzzysearch.Field[Product]{
//	        {Name: "brand", Fuzzy: true, Text: func(p Product) string { return p.Brand }},
//	        {Name: "name", Fuzzy: true, Text: func(p Product) string { return p.Name }},
//	    },
//	}
//
//	ix, err := fuzzysearch.Open("./catalog.log", schema)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ix.Close()
//
//	_ = ix.Add(ctx, Product{ID: 1, Brand: "Acme", Name: "Wrench"})
//	results, _ := ix.Find(ctx, "wrnch")
//
// # Bulk Loading
//
// Outside a batch every Add is written and indexed before it returns. Wrap
// bulk loads in a batch to write them in one go:
//
//	ix.StartBatch()
//	for _, p := range products {
//	    _ = ix.Add(ctx, p)
//	}
//	_ = ix.CommitBatch(ctx)
//
// # Scoring
//
// The search text is lower-cased and split on whitespace into terms. For each
// term, each fuzzy field reports its closest token; a token is only accepted
// when distance/len(term) is below the cutoff (0.5 by default). A record
// matches when every term is accepted by some field, and its score is the
// mean of the per-term distances. Lower scores rank first.
//
// # Query Language
//
// Query accepts a small directive language:
//
//	SEARCH "cordless drill" MAXDIST 0.3 OFFSET 20 LIMIT 10 RETURN name
//
// See package query for the grammar.
//
// # Durability
//
// A record is durable once the flush that wrote it returns. A data log that
// outlived its offset index (a crash between the two writes) is re-indexed
// on Open, and a torn trailing record is truncated away.
package fuzzysearch
