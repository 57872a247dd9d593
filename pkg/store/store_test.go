package store_test

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleksaelezovic/factstore/internal/storage"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/aleksaelezovic/factstore/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.org/"

func newTestStore(t *testing.T) *store.TripleStore {
	t.Helper()
	backend, err := storage.NewMemoryStorage()
	require.NoError(t, err)
	s := store.NewTripleStore(backend)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func iri(local string) *rdf.NamedNode {
	return rdf.MustNamedNode(ex + local)
}

func peopleTriples() []*rdf.Triple {
	return []*rdf.Triple{
		rdf.MustTriple(iri("alice"), iri("name"), rdf.NewLiteral("Alice")),
		rdf.MustTriple(iri("alice"), iri("knows"), iri("bob")),
		rdf.MustTriple(iri("bob"), iri("name"), rdf.NewLiteral("Bob")),
		rdf.MustTriple(iri("bob"), iri("knows"), iri("carol")),
		rdf.MustTriple(rdf.MustBlankNode("c"), iri("knows"), iri("bob")),
	}
}

func TestAddAll(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddAll(peopleTriples())
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// Re-adding is a no-op
	added, err = s.AddAll(peopleTriples()[:2])
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	count, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestAddAll_DuplicatesWithinBatch(t *testing.T) {
	s := newTestStore(t)

	triple := rdf.MustTriple(iri("s"), iri("p"), rdf.NewLiteral("o"))
	same := rdf.MustTriple(iri("s"), iri("p"), rdf.NewLiteral("o"))

	added, err := s.AddAll([]*rdf.Triple{triple, same, triple})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAddAll_EmptyBatch(t *testing.T) {
	s := newTestStore(t)

	added, err := s.AddAll(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestAddAll_FailedBatchLeavesStoreUnchanged(t *testing.T) {
	s := newTestStore(t)

	batch := []*rdf.Triple{peopleTriples()[0], nil}
	_, err := s.AddAll(batch)
	require.Error(t, err)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	triples, err := s.Match(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, triples)
}

func TestRemoveAll(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddAll(peopleTriples())
	require.NoError(t, err)

	absent := rdf.MustTriple(iri("dave"), iri("name"), rdf.NewLiteral("Dave"))
	removed, err := s.RemoveAll([]*rdf.Triple{peopleTriples()[0], absent, peopleTriples()[0]})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	ok, err := s.Contains(peopleTriples()[0])
	require.NoError(t, err)
	assert.False(t, ok)

	// Removed triples disappear from every index
	byObject, err := s.Match(nil, nil, rdf.NewLiteral("Alice"))
	require.NoError(t, err)
	assert.Empty(t, byObject)
	byPredicate, err := s.Match(nil, iri("name"), nil)
	require.NoError(t, err)
	assert.Len(t, byPredicate, 1)
}

func TestMatch(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddAll(peopleTriples())
	require.NoError(t, err)

	tests := []struct {
		name      string
		subject   rdf.Subject
		predicate *rdf.NamedNode
		object    rdf.Term
		expected  int
	}{
		{"all wildcards", nil, nil, nil, 5},
		{"subject", iri("alice"), nil, nil, 2},
		{"blank subject", rdf.MustBlankNode("c"), nil, nil, 1},
		{"predicate", nil, iri("knows"), nil, 3},
		{"object", nil, nil, iri("bob"), 2},
		{"literal object", nil, nil, rdf.NewLiteral("Bob"), 1},
		{"subject and predicate", iri("bob"), iri("knows"), nil, 1},
		{"predicate and object", nil, iri("knows"), iri("bob"), 2},
		{"subject and object", iri("alice"), nil, iri("bob"), 1},
		{"fully bound", iri("alice"), iri("name"), rdf.NewLiteral("Alice"), 1},
		{"no match", iri("alice"), iri("name"), rdf.NewLiteral("alice"), 0},
		{"unknown subject", iri("nobody"), nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			triples, err := s.Match(tt.subject, tt.predicate, tt.object)
			require.NoError(t, err)
			assert.Len(t, triples, tt.expected)
			for _, triple := range triples {
				if tt.subject != nil {
					assert.True(t, triple.Subject().Equals(tt.subject))
				}
				if tt.predicate != nil {
					assert.True(t, triple.Predicate().Equals(tt.predicate))
				}
				if tt.object != nil {
					assert.True(t, triple.Object().Equals(tt.object))
				}
			}
		})
	}
}

func TestMatch_TypedNilIsWildcard(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddAll(peopleTriples())
	require.NoError(t, err)

	var subject *rdf.NamedNode
	var object *rdf.Literal
	triples, err := s.Match(subject, nil, object)
	require.NoError(t, err)
	assert.Len(t, triples, 5)
}

func TestMatch_LiteralIdentity(t *testing.T) {
	s := newTestStore(t)

	ltr, err := rdf.NewDirLangLiteral("hello", "en", rdf.DirectionLTR)
	require.NoError(t, err)
	rtl, err := rdf.NewDirLangLiteral("hello", "en", rdf.DirectionRTL)
	require.NoError(t, err)
	lang, err := rdf.NewLangLiteral("hello", "en")
	require.NoError(t, err)

	_, err = s.AddAll([]*rdf.Triple{
		rdf.MustTriple(iri("s"), iri("label"), ltr),
		rdf.MustTriple(iri("s"), iri("label"), rtl),
		rdf.MustTriple(iri("s"), iri("label"), lang),
		rdf.MustTriple(iri("s"), iri("label"), rdf.NewLiteral("hello")),
		rdf.MustTriple(iri("s"), iri("duration"), rdf.NewDayTimeDurationLiteral(5400000)),
	})
	require.NoError(t, err)

	for _, object := range []rdf.Term{ltr, rtl, lang, rdf.NewLiteral("hello")} {
		triples, err := s.Match(nil, nil, object)
		require.NoError(t, err)
		require.Len(t, triples, 1, "object %s", object)
		assert.True(t, triples[0].Object().Equals(object))
	}

	triples, err := s.Match(iri("s"), iri("duration"), nil)
	require.NoError(t, err)
	require.Len(t, triples, 1)
	d, err := triples[0].Object().(*rdf.Literal).DayTimeDuration()
	require.NoError(t, err)
	assert.Equal(t, int64(5400000), d.Milliseconds())
}

func TestQueryIterator(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddAll(peopleTriples())
	require.NoError(t, err)

	it, err := s.Query(&store.Pattern{Predicate: iri("name")})
	require.NoError(t, err)

	names := 0
	for it.Next() {
		triple, err := it.Triple()
		require.NoError(t, err)
		assert.Equal(t, rdf.TermTypeLiteral, triple.Object().Type())
		names++
	}
	assert.Equal(t, 2, names)

	require.NoError(t, it.Close())
	assert.False(t, it.Next())
	assert.NoError(t, it.Close())
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	id := "123e4567-e89b-12d3-a456-426614174000"
	_, err := s.AddAll(append(peopleTriples(),
		rdf.MustTriple(rdf.MustNamedNode("urn:note:"+id), iri("title"), rdf.NewLiteral("x"))))
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	triples, err := s.Match(nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, triples)

	subjects, err := s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.Empty(t, subjects)

	// The store is usable after Clear
	added, err := s.AddAll(peopleTriples()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestFindSubjectsByUUID(t *testing.T) {
	s := newTestStore(t)

	id := "123e4567-e89b-12d3-a456-426614174000"
	note := rdf.MustNamedNode("https://notes.example.org/" + id + "/note")
	upper := rdf.MustNamedNode("urn:item:" + strings.ToUpper(id))
	embedded := rdf.MustNamedNode("urn:item:x" + id)
	other := rdf.MustNamedNode("urn:item:00000000-0000-4000-8000-000000000000")

	_, err := s.AddAll([]*rdf.Triple{
		rdf.MustTriple(note, iri("title"), rdf.NewLiteral("Note")),
		rdf.MustTriple(note, iri("tag"), rdf.NewLiteral("a")),
		rdf.MustTriple(upper, iri("title"), rdf.NewLiteral("Upper")),
		rdf.MustTriple(embedded, iri("title"), rdf.NewLiteral("Embedded")),
		rdf.MustTriple(other, iri("title"), rdf.NewLiteral("Other")),
		rdf.MustTriple(iri("s"), iri("ref"), note),
	})
	require.NoError(t, err)

	subjects, err := s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{note.String(), upper.String()}, subjectStrings(subjects))

	// Case-insensitive lookup
	subjects, err = s.FindSubjectsByUUID(strings.ToUpper(id))
	require.NoError(t, err)
	assert.Len(t, subjects, 2)

	// Non-UUID input finds nothing
	subjects, err = s.FindSubjectsByUUID("not-a-uuid")
	require.NoError(t, err)
	assert.Empty(t, subjects)

	// The index entry survives until the subject's last triple is removed
	_, err = s.RemoveAll([]*rdf.Triple{rdf.MustTriple(note, iri("title"), rdf.NewLiteral("Note"))})
	require.NoError(t, err)
	subjects, err = s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.Len(t, subjects, 2)

	_, err = s.RemoveAll([]*rdf.Triple{rdf.MustTriple(note, iri("tag"), rdf.NewLiteral("a"))})
	require.NoError(t, err)
	subjects, err = s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.Equal(t, []string{upper.String()}, subjectStrings(subjects))
}

func TestAddAll_LargeBatchWithUUIDSubjects(t *testing.T) {
	backend, err := storage.Open(storage.Config{InMemory: true, MemTableSize: 128 << 20})
	require.NoError(t, err)
	s := store.NewTripleStore(backend)
	t.Cleanup(func() { _ = s.Close() })

	const n = 20000
	id := func(i int) string { return fmt.Sprintf("%08x-0000-4000-8000-000000000000", i) }

	triples := make([]*rdf.Triple, 0, n)
	for i := 0; i < n; i++ {
		subject := rdf.MustNamedNode("urn:uuid:" + id(i))
		triples = append(triples, rdf.MustTriple(subject, iri("seen"), rdf.NewIntegerLiteral(int64(i%10))))
	}

	start := time.Now()
	added, err := s.AddAll(triples)
	require.NoError(t, err)
	assert.Equal(t, n, added)

	removed, err := s.RemoveAll(triples)
	require.NoError(t, err)
	assert.Equal(t, n, removed)
	assert.Less(t, time.Since(start), 30*time.Second, "batch cost must stay linear in batch size")

	count, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, i := range []int{0, n / 2, n - 1} {
		subjects, err := s.FindSubjectsByUUID(id(i))
		require.NoError(t, err)
		assert.Empty(t, subjects, "uuid %s", id(i))
	}
}

func TestFindSubjectsByUUID_SubjectRefsWithinOneBatch(t *testing.T) {
	s := newTestStore(t)

	id := "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	subject := rdf.MustNamedNode("urn:uuid:" + id)
	first := rdf.MustTriple(subject, iri("a"), rdf.NewLiteral("1"))
	second := rdf.MustTriple(subject, iri("b"), rdf.NewLiteral("2"))

	// A duplicate inside the batch must not inflate the subject's count
	_, err := s.AddAll([]*rdf.Triple{first, first, second})
	require.NoError(t, err)

	_, err = s.RemoveAll([]*rdf.Triple{first})
	require.NoError(t, err)
	subjects, err := s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.Equal(t, []string{subject.String()}, subjectStrings(subjects))

	_, err = s.RemoveAll([]*rdf.Triple{second, second})
	require.NoError(t, err)
	subjects, err = s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.Empty(t, subjects)

	// Re-adding after full removal indexes the subject again
	_, err = s.AddAll([]*rdf.Triple{second})
	require.NoError(t, err)
	subjects, err = s.FindSubjectsByUUID(id)
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
}

func subjectStrings(subjects []rdf.Subject) []string {
	out := make([]string, len(subjects))
	for i, s := range subjects {
		out[i] = s.String()
	}
	return out
}

func TestBatchAtomicityUnderConcurrentReads(t *testing.T) {
	s := newTestStore(t)

	const batches = 20
	const batchSize = 50

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for b := 0; b < batches; b++ {
			batch := make([]*rdf.Triple, batchSize)
			for i := range batch {
				batch[i] = rdf.MustTriple(iri(fmt.Sprintf("s%d_%d", b, i)), iri("p"), rdf.NewIntegerLiteral(int64(i)))
			}
			_, err := s.AddAll(batch)
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 50; r++ {
		triples, err := s.Match(nil, iri("p"), nil)
		require.NoError(t, err)
		assert.Zero(t, len(triples)%batchSize, "observed a partial batch: %d triples", len(triples))
	}
	wg.Wait()

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(batches*batchSize), count)
}
