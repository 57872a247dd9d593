package rdf

import (
	"github.com/aleksaelezovic/factstore/internal/errors"
)

// Triple represents an RDF triple (subject, predicate, object).
// A Triple is immutable; two triples are the same fact when all three
// positions are equal.
type Triple struct {
	subject   Subject
	predicate *NamedNode
	object    Term
}

// NewTriple creates a triple, rejecting missing positions
func NewTriple(subject Subject, predicate *NamedNode, object Term) (*Triple, error) {
	if subject == nil || isNilTerm(subject) {
		return nil, errors.Mark(errors.New("triple subject must not be nil"), ErrInvalidTerm)
	}
	if predicate == nil {
		return nil, errors.Mark(errors.New("triple predicate must not be nil"), ErrInvalidTerm)
	}
	if object == nil || isNilTerm(object) {
		return nil, errors.Mark(errors.New("triple object must not be nil"), ErrInvalidTerm)
	}
	return &Triple{subject: subject, predicate: predicate, object: object}, nil
}

// MustTriple is like NewTriple but panics on a missing position
func MustTriple(subject Subject, predicate *NamedNode, object Term) *Triple {
	t, err := NewTriple(subject, predicate, object)
	if err != nil {
		panic(err)
	}
	return t
}

// isNilTerm reports typed nil pointers hidden behind the interface
func isNilTerm(t Term) bool {
	switch v := t.(type) {
	case *NamedNode:
		return v == nil
	case *BlankNode:
		return v == nil
	case *Literal:
		return v == nil
	default:
		return false
	}
}

func (t *Triple) Subject() Subject {
	return t.subject
}

func (t *Triple) Predicate() *NamedNode {
	return t.predicate
}

func (t *Triple) Object() Term {
	return t.object
}

// Equals reports structural equality
func (t *Triple) Equals(other *Triple) bool {
	if other == nil {
		return false
	}
	return t.subject.Equals(other.subject) &&
		t.predicate.Equals(other.predicate) &&
		t.object.Equals(other.object)
}

func (t *Triple) String() string {
	return t.subject.String() + " " + t.predicate.String() + " " + t.object.String() + " ."
}
