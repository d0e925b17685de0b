package fuzzysearch_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	fuzzysearch "github.com/PixelSnake/FuzzySearch"
)

type Product struct {
	ID    uint64
	Brand string
	Name  string
}

func productSchema() fuzzysearch.Schema[Product] {
	return fuzzysearch.Schema[Product]{
		ID: func(p Product) uint64 { return p.ID },
		Fields: []fuzzysearch.Field[Product]{
			{Name: "brand", Fuzzy: true, Text: func(p Product) string { return p.Brand }},
			{Name: "name", Fuzzy: true, Text: func(p Product) string { return p.Name }},
		},
	}
}

func openExample(products ...Product) (*fuzzysearch.Index[Product], func()) {
	dir, err := os.MkdirTemp("", "fuzzysearch-example")
	if err != nil {
		log.Fatal(err)
	}
	ix, err := fuzzysearch.Open(filepath.Join(dir, "catalog.log"), productSchema())
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	ix.StartBatch()
	for _, p := range products {
		if err := ix.Add(ctx, p); err != nil {
			log.Fatal(err)
		}
	}
	if err := ix.CommitBatch(ctx); err != nil {
		log.Fatal(err)
	}
	return ix, func() {
		ix.Close()
		os.RemoveAll(dir)
	}
}

// Example_find demonstrates a typo-tolerant search.
func Example_find() {
	ix, cleanup := openExample(
		Product{ID: 1, Brand: "Acme", Name: "Wrench"},
		Product{ID: 2, Brand: "Bosch", Name: "Cordless Drill"},
	)
	defer cleanup()

	results, err := ix.Find(context.Background(), "wrnch")
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		h := r.Highlight
		fmt.Printf("id=%d score=%.2f field=%s offset=%d length=%d\n", r.ID, r.Score, h.Field, h.Offset, h.Length)
	}
	// Output: id=1 score=1.00 field=name offset=1 length=6
}

// Example_query demonstrates the directive language.
func Example_query() {
	ix, cleanup := openExample(
		Product{ID: 1, Brand: "Acme", Name: "Wrench"},
		Product{ID: 2, Brand: "Acme", Name: "Torque Wrench"},
		Product{ID: 3, Brand: "Bosch", Name: "Wrenches"},
	)
	defer cleanup()

	results, err := ix.Query(context.Background(), `SEARCH "wrench" OFFSET 1 LIMIT 1 RETURN name`)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range results {
		fmt.Println(r.ID, r.Fields["name"])
	}

	_, err = ix.Query(context.Background(), `LIMIT 5`)
	fmt.Println(err)
	// Output:
	// 2 [torque wrench]
	// query: unexpected LIMIT statement
}
