package store

import (
	"github.com/aleksaelezovic/factstore/internal/encoding"
	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
)

// Pattern is a triple pattern. A nil position matches any term.
type Pattern struct {
	Subject   rdf.Subject
	Predicate *rdf.NamedNode
	Object    rdf.Term
}

// positions returns the pattern terms in S, P, O order with wildcards as nil
func (p *Pattern) positions() [3]rdf.Term {
	var out [3]rdf.Term
	if p == nil {
		return out
	}
	if !isWildcard(p.Subject) {
		out[0] = p.Subject
	}
	if p.Predicate != nil {
		out[1] = p.Predicate
	}
	if !isWildcard(p.Object) {
		out[2] = p.Object
	}
	return out
}

// isWildcard treats nil interfaces and typed nil pointers alike
func isWildcard(term rdf.Term) bool {
	return rdf.IsNil(term)
}

// TripleIterator iterates over triples matching a pattern
type TripleIterator interface {
	Next() bool
	Triple() (*rdf.Triple, error)
	Close() error
}

// Match returns every stored triple matching the given positions.
// Nil arguments are wildcards.
func (s *TripleStore) Match(subject rdf.Subject, predicate *rdf.NamedNode, object rdf.Term) ([]*rdf.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, err := s.Query(&Pattern{Subject: subject, Predicate: predicate, Object: object})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var triples []*rdf.Triple
	for it.Next() {
		triple, err := it.Triple()
		if err != nil {
			return nil, err
		}
		triples = append(triples, triple)
	}
	return triples, nil
}

// Query executes a pattern match over a read-only snapshot and returns
// the matching triples as an iterator. The caller must Close it.
func (s *TripleStore) Query(pattern *Pattern) (TripleIterator, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	positions := pattern.positions()
	table, keyPattern := selectIndex(positions)

	prefix, err := s.buildScanPrefix(positions, keyPattern)
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}

	it, err := txn.Scan(table, prefix)
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}

	return &tripleIterator{
		store:      s,
		txn:        txn,
		it:         it,
		keyPattern: keyPattern,
		cache:      make(map[encoding.EncodedTerm]rdf.Term),
	}, nil
}

// selectIndex chooses the permutation whose key starts with the bound
// positions. keyPattern maps key position -> SPO position (S=0, P=1, O=2).
func selectIndex(positions [3]rdf.Term) (Table, [3]int) {
	sBound := positions[0] != nil
	pBound := positions[1] != nil
	oBound := positions[2] != nil

	switch {
	case sBound && pBound:
		return TableSPO, [3]int{0, 1, 2}
	case pBound && oBound:
		return TablePOS, [3]int{1, 2, 0}
	case oBound && sBound:
		return TableOSP, [3]int{2, 0, 1}
	case sBound:
		return TableSPO, [3]int{0, 1, 2}
	case pBound:
		return TablePOS, [3]int{1, 2, 0}
	case oBound:
		return TableOSP, [3]int{2, 0, 1}
	default:
		return TableSPO, [3]int{0, 1, 2}
	}
}

// buildScanPrefix encodes bound terms in key order up to the first wildcard
func (s *TripleStore) buildScanPrefix(positions [3]rdf.Term, keyPattern [3]int) ([]byte, error) {
	var prefix []byte
	for _, idx := range keyPattern {
		term := positions[idx]
		if term == nil {
			break
		}
		encoded, _, err := s.encoder.EncodeTerm(term)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, encoded[:]...)
	}
	return prefix, nil
}

// tripleIterator implements TripleIterator
type tripleIterator struct {
	store      *TripleStore
	txn        Transaction
	it         Iterator
	keyPattern [3]int
	cache      map[encoding.EncodedTerm]rdf.Term
	closed     bool
}

func (ti *tripleIterator) Next() bool {
	if ti.closed {
		return false
	}
	return ti.it.Next()
}

func (ti *tripleIterator) Triple() (*rdf.Triple, error) {
	if ti.closed {
		return nil, errors.New("iterator closed")
	}

	key := ti.it.Key()
	if key == nil {
		return nil, errors.New("no current key")
	}

	parts, err := encoding.SplitKey(key, 3)
	if err != nil {
		return nil, err
	}

	var terms [3]rdf.Term
	for i, idx := range ti.keyPattern {
		terms[idx], err = ti.store.decodeTerm(ti.txn, parts[i], ti.cache)
		if err != nil {
			return nil, err
		}
	}

	subject, ok := terms[0].(rdf.Subject)
	if !ok {
		return nil, errors.Newf("stored subject is not a subject term: %s", terms[0])
	}
	predicate, ok := terms[1].(*rdf.NamedNode)
	if !ok {
		return nil, errors.Newf("stored predicate is not an IRI: %s", terms[1])
	}
	return rdf.NewTriple(subject, predicate, terms[2])
}

func (ti *tripleIterator) Close() error {
	if ti.closed {
		return nil
	}
	ti.closed = true
	_ = ti.it.Close()
	return ti.txn.Rollback()
}
