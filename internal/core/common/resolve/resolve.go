// Package resolve implements ordered fallback lookups where each candidate
// source is tried in turn and the winning source is reported with the value.
package resolve

import "context"

type Source string

const (
	SourceDatabase Source = "database"
	SourceRegistry Source = "registry"
	SourceLegacy   Source = "legacy"
	SourceDefault  Source = "default"
	SourceNone     Source = "none"
)

// LookupFunc reports whether the source holds a value. A non-nil error aborts the chain.
type LookupFunc[T any] func(ctx context.Context) (T, bool, error)

type Candidate[T any] struct {
	Source Source
	Lookup LookupFunc[T]
}

func From[T any](source Source, lookup LookupFunc[T]) Candidate[T] {
	return Candidate[T]{Source: source, Lookup: lookup}
}

// First returns the value of the first candidate that reports a hit.
// When nothing matches it returns the zero value and SourceNone.
func First[T any](ctx context.Context, candidates ...Candidate[T]) (T, Source, error) {
	var zero T
	for _, c := range candidates {
		if c.Lookup == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return zero, SourceNone, err
		}
		v, ok, err := c.Lookup(ctx)
		if err != nil {
			return zero, c.Source, err
		}
		if ok {
			return v, c.Source, nil
		}
	}
	return zero, SourceNone, nil
}
