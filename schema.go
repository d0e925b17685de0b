package fuzzysearch

import (
	"fmt"
	"strings"

	"github.com/PixelSnake/FuzzySearch/internal/store"
)

// Field describes one searchable attribute of T.
type Field[T any] struct {
	// Name identifies the field in results and RETURN projections.
	Name string
	// Fuzzy marks the field as searched and stored.
	Fuzzy bool
	// Text returns the field's raw text. It is lower-cased and split on
	// whitespace unless Tokens is set.
	Text func(T) string
	// Tokens optionally returns precomputed tokens and takes precedence over
	// Text.
	Tokens func(T) []string
}

// Schema describes how records of type T are identified and tokenized.
type Schema[T any] struct {
	ID     func(T) uint64
	Fields []Field[T]
}

// Validate checks that the schema has an id accessor, at least one fuzzy
// field, unique field names and an accessor on every fuzzy field.
func (s Schema[T]) Validate() error {
	if s.ID == nil {
		return fmt.Errorf("%w: missing id accessor", ErrInvalidSchema)
	}

	seen := make(map[string]struct{}, len(s.Fields))
	fuzzy := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field without name", ErrInvalidSchema)
		}
		key := strings.ToLower(f.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[key] = struct{}{}

		if !f.Fuzzy {
			continue
		}
		if f.Text == nil && f.Tokens == nil {
			return fmt.Errorf("%w: fuzzy field %q has no accessor", ErrInvalidSchema, f.Name)
		}
		fuzzy++
	}
	if fuzzy < 1 {
		return fmt.Errorf("%w: at least one fuzzy field is required", ErrInvalidSchema)
	}
	return nil
}

// FuzzyFields returns the names of the fuzzy fields in schema order.
func (s Schema[T]) FuzzyFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Fuzzy {
			names = append(names, f.Name)
		}
	}
	return names
}

func (s Schema[T]) record(item T) store.Record {
	rec := store.Record{ID: s.ID(item)}
	for _, f := range s.Fields {
		if !f.Fuzzy {
			continue
		}
		var tokens []string
		if f.Tokens != nil {
			tokens = f.Tokens(item)
		} else {
			tokens = Tokenize(f.Text(item))
		}
		if tokens == nil {
			tokens = []string{}
		}
		rec.Fields = append(rec.Fields, tokens)
	}
	return rec
}

// Tokenize lower-cases text and splits it on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Item is a generic record with named text fields.
type Item struct {
	ID     uint64
	Fields map[string]string
}

// ItemSchema returns a schema over Item whose fuzzy fields are the given
// names, in order.
func ItemSchema(fields ...string) Schema[Item] {
	s := Schema[Item]{
		ID: func(it Item) uint64 { return it.ID },
	}
	for _, name := range fields {
		s.Fields = append(s.Fields, Field[Item]{
			Name:  name,
			Fuzzy: true,
			Text:  func(it Item) string { return it.Fields[name] },
		})
	}
	return s
}

// Document is the stored form of a record: its id and the tokens of each
// fuzzy field.
type Document struct {
	ID     uint64
	Tokens map[string][]string
}
