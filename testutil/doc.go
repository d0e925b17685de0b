// Package testutil provides testing utilities for fuzzysearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic product catalogs,
// misspelling words and computing reference scores sequentially.
//
// # Catalog Generation
//
//	rng := testutil.NewRNG(seed)
//	products := rng.Products(1000)
//	query := rng.Typo(products[0].Name)
//
// # Reference Scoring
//
//	score, ok := testutil.ReferenceScore(fields, terms, computer)
package testutil
