// Package tripleterm rewrites the parenthesized triple term notation
// <<( s p o )>> into the canonical << s p o >> form.
package tripleterm

import (
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
)

// DefaultMaxIterations bounds the scanning loop of the default transformer
const DefaultMaxIterations = 10_000_000

var (
	// ErrUnclosedTripleTerm is returned when an opening <<( has no matching )>>
	ErrUnclosedTripleTerm = errors.New("unclosed triple term")

	// ErrCollectionSubject is returned when a triple term's subject is a
	// collection, as in <<( (1 2) :p :o )>>
	ErrCollectionSubject = errors.New("triple term subject cannot be a collection")

	// ErrIterationLimit is returned when scanning exceeds MaxIterations
	ErrIterationLimit = errors.New("triple term transform iteration limit exceeded")
)

// Transformer rewrites triple term syntax. The zero value uses
// DefaultMaxIterations.
type Transformer struct {
	MaxIterations int
}

// Option configures a Transformer
type Option func(*Transformer)

// WithMaxIterations sets the scanning loop bound
func WithMaxIterations(n int) Option {
	return func(t *Transformer) {
		t.MaxIterations = n
	}
}

// NewTransformer creates a transformer
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{MaxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var defaultTransformer = NewTransformer()

// HasTripleTermSyntax reports whether text contains an opening <<( outside
// every string literal, IRI and comment.
func HasTripleTermSyntax(text string) bool {
	return defaultTransformer.HasTripleTermSyntax(text)
}

// Transform rewrites every <<( ... )>> in text using the default transformer
func Transform(text string) (string, error) {
	return defaultTransformer.Transform(text)
}

// HasTripleTermSyntax reports whether text contains an opening <<( outside
// every string literal, IRI and comment.
func (t *Transformer) HasTripleTermSyntax(text string) bool {
	s := newScanner(text, t.maxIterations())
	s.detectOnly = true
	_ = s.run()
	return s.found
}

// Transform rewrites every <<( ... )>> in text to << ... >>. Text inside
// string literals and already canonical triple terms is left untouched.
// On error no partial output is returned.
func (t *Transformer) Transform(text string) (string, error) {
	if !strings.Contains(text, "<<") {
		return text, nil
	}
	s := newScanner(text, t.maxIterations())
	if err := s.run(); err != nil {
		return "", err
	}
	return s.out.String(), nil
}

func (t *Transformer) maxIterations() int {
	if t == nil || t.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return t.MaxIterations
}
