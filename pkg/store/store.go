package store

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/aleksaelezovic/factstore/internal/encoding"
	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var countKey = []byte("count")

// TripleStore is a set of triples kept in three index permutations
// (SPO, POS, OSP) plus a subject UUID index.
type TripleStore struct {
	// mu serializes writers and Clear against each other and against Match
	mu      sync.RWMutex
	storage Storage
	encoder *encoding.TermEncoder
	decoder *encoding.TermDecoder
	logger  *zap.Logger
}

// Option configures a TripleStore
type Option func(*TripleStore)

// WithLogger sets the logger used for batch outcomes
func WithLogger(logger *zap.Logger) Option {
	return func(s *TripleStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewTripleStore creates a new triplestore on top of storage
func NewTripleStore(storage Storage, opts ...Option) *TripleStore {
	s := &TripleStore{
		storage: storage,
		encoder: encoding.NewTermEncoder(),
		decoder: encoding.NewTermDecoder(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the triplestore
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// encodedTriple holds the encoded terms and id2str payloads of a triple
type encodedTriple struct {
	terms    [3]encoding.EncodedTerm
	payloads [3][]byte
}

func (s *TripleStore) encodeTriple(triple *rdf.Triple) (*encodedTriple, error) {
	if triple == nil {
		return nil, errors.New("nil triple")
	}
	var et encodedTriple
	var err error
	if et.terms[0], et.payloads[0], err = s.encoder.EncodeTerm(triple.Subject()); err != nil {
		return nil, errors.Wrap(err, "failed to encode subject")
	}
	if et.terms[1], et.payloads[1], err = s.encoder.EncodeTerm(triple.Predicate()); err != nil {
		return nil, errors.Wrap(err, "failed to encode predicate")
	}
	if et.terms[2], et.payloads[2], err = s.encoder.EncodeTerm(triple.Object()); err != nil {
		return nil, errors.Wrap(err, "failed to encode object")
	}
	return &et, nil
}

func (et *encodedTriple) spoKey() []byte {
	return encoding.EncodeKey(et.terms[0], et.terms[1], et.terms[2])
}

func (et *encodedTriple) posKey() []byte {
	return encoding.EncodeKey(et.terms[1], et.terms[2], et.terms[0])
}

func (et *encodedTriple) ospKey() []byte {
	return encoding.EncodeKey(et.terms[2], et.terms[0], et.terms[1])
}

// AddAll inserts every triple not already present in a single transaction
// and returns how many were inserted.
func (s *TripleStore) AddAll(triples []*rdf.Triple) (int, error) {
	if len(triples) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	added := 0
	for i, triple := range triples {
		inserted, err := s.insertTripleInTxn(txn, triple)
		if err != nil {
			return 0, errors.Wrapf(err, "triple %d of batch", i)
		}
		if inserted {
			added++
		}
	}

	count, err := s.commitWithCount(txn, int64(added))
	if err != nil {
		return 0, err
	}

	triplesAdded.Add(float64(added))
	batchDuration.WithLabelValues("add").Observe(time.Since(start).Seconds())
	s.logger.Debug("add batch committed",
		zap.Int("batch_size", len(triples)),
		zap.Int("added", added),
		zap.Int64("count", count),
		zap.Duration("took", time.Since(start)))

	return added, nil
}

// insertTripleInTxn writes a triple unless its SPO key already exists
func (s *TripleStore) insertTripleInTxn(txn Transaction, triple *rdf.Triple) (bool, error) {
	et, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	spo := et.spoKey()
	if _, err := txn.Get(TableSPO, spo); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	for i := range et.terms {
		if err := s.storePayload(txn, et.terms[i], et.payloads[i]); err != nil {
			return false, err
		}
	}

	// The UUID index gains an entry the first time a subject appears
	if ids := subjectUUIDs(triple.Subject()); len(ids) > 0 {
		refs, err := s.adjustSubjectRefs(txn, et.terms[0], 1)
		if err != nil {
			return false, err
		}
		if refs == 1 {
			if err := s.indexSubjectUUIDs(txn, ids, et.terms[0]); err != nil {
				return false, err
			}
		}
	}

	emptyValue := []byte{}
	if err := txn.Set(TableSPO, spo, emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TablePOS, et.posKey(), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableOSP, et.ospKey(), emptyValue); err != nil {
		return false, err
	}
	return true, nil
}

// storePayload writes the id2str entry for a term if it is missing
func (s *TripleStore) storePayload(txn Transaction, encoded encoding.EncodedTerm, payload []byte) error {
	if _, err := txn.Get(TableID2Str, encoded.Hash()); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return txn.Set(TableID2Str, encoded.Hash(), payload)
}

// subjectUUIDs returns the UUID tokens of an IRI subject
func subjectUUIDs(subject rdf.Subject) []uuid.UUID {
	node, ok := subject.(*rdf.NamedNode)
	if !ok {
		return nil
	}
	return ExtractUUIDs(node.IRI())
}

// adjustSubjectRefs changes the number of stored triples recorded for a
// UUID-bearing subject by delta and returns the new number. The entry is
// deleted when it drops to zero.
func (s *TripleStore) adjustSubjectRefs(txn Transaction, subject encoding.EncodedTerm, delta int64) (int64, error) {
	refs, err := readUint64(txn, TableSubjectRefs, subject[:])
	if err != nil {
		return 0, errors.Wrap(err, "subject reference count")
	}
	refs += delta
	if refs <= 0 {
		return 0, txn.Delete(TableSubjectRefs, subject[:])
	}
	return refs, txn.Set(TableSubjectRefs, subject[:], encodeUint64(refs))
}

func uuidKey(id uuid.UUID, subject encoding.EncodedTerm) []byte {
	key := make([]byte, 0, len(id)+encoding.EncodedTermSize)
	key = append(key, id[:]...)
	return append(key, subject[:]...)
}

func (s *TripleStore) indexSubjectUUIDs(txn Transaction, ids []uuid.UUID, subject encoding.EncodedTerm) error {
	for _, id := range ids {
		if err := txn.Set(TableSubjectUUID, uuidKey(id, subject), []byte{}); err != nil {
			return err
		}
	}
	return nil
}

func (s *TripleStore) unindexSubjectUUIDs(txn Transaction, ids []uuid.UUID, subject encoding.EncodedTerm) error {
	for _, id := range ids {
		if err := txn.Delete(TableSubjectUUID, uuidKey(id, subject)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAll deletes every given triple that is present in a single
// transaction and returns how many were removed. Absent triples are skipped.
func (s *TripleStore) RemoveAll(triples []*rdf.Triple) (int, error) {
	if len(triples) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	removed := 0
	for i, triple := range triples {
		deleted, err := s.deleteTripleInTxn(txn, triple)
		if err != nil {
			return 0, errors.Wrapf(err, "triple %d of batch", i)
		}
		if deleted {
			removed++
		}
	}

	count, err := s.commitWithCount(txn, -int64(removed))
	if err != nil {
		return 0, err
	}

	triplesRemoved.Add(float64(removed))
	batchDuration.WithLabelValues("remove").Observe(time.Since(start).Seconds())
	s.logger.Debug("remove batch committed",
		zap.Int("batch_size", len(triples)),
		zap.Int("removed", removed),
		zap.Int64("count", count),
		zap.Duration("took", time.Since(start)))

	return removed, nil
}

// deleteTripleInTxn removes a triple from all indexes. Term payloads stay
// in id2str; they are shared and only dropped by Clear.
func (s *TripleStore) deleteTripleInTxn(txn Transaction, triple *rdf.Triple) (bool, error) {
	et, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	spo := et.spoKey()
	if _, err := txn.Get(TableSPO, spo); errors.Is(err, ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err := txn.Delete(TableSPO, spo); err != nil {
		return false, err
	}
	if err := txn.Delete(TablePOS, et.posKey()); err != nil {
		return false, err
	}
	if err := txn.Delete(TableOSP, et.ospKey()); err != nil {
		return false, err
	}

	if ids := subjectUUIDs(triple.Subject()); len(ids) > 0 {
		refs, err := s.adjustSubjectRefs(txn, et.terms[0], -1)
		if err != nil {
			return false, err
		}
		if refs == 0 {
			if err := s.unindexSubjectUUIDs(txn, ids, et.terms[0]); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}

// commitWithCount adjusts the stored triple counter by delta and commits
func (s *TripleStore) commitWithCount(txn Transaction, delta int64) (int64, error) {
	count, err := readCount(txn)
	if err != nil {
		return 0, err
	}
	if delta != 0 {
		count += delta
		if err := txn.Set(TableMeta, countKey, encodeUint64(count)); err != nil {
			return 0, err
		}
	}
	if err := txn.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit batch")
	}
	tripleGauge.Set(float64(count))
	return count, nil
}

func readCount(txn Transaction) (int64, error) {
	count, err := readUint64(txn, TableMeta, countKey)
	if err != nil {
		return 0, errors.Wrap(err, "triple counter")
	}
	return count, nil
}

// readUint64 reads a big-endian counter. A missing key reads as zero.
func readUint64(txn Transaction, table Table, key []byte) (int64, error) {
	value, err := txn.Get(table, key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(value) != 8 {
		return 0, errors.Newf("corrupt counter in %s: %d bytes", table, len(value))
	}
	return int64(binary.BigEndian.Uint64(value)), nil
}

func encodeUint64(n int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return buf
}

// Clear removes every triple, index entry and term payload
func (s *TripleStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.DropAll(); err != nil {
		return errors.Wrap(err, "failed to clear store")
	}
	tripleGauge.Set(0)
	s.logger.Debug("store cleared")
	return nil
}

// Count returns the number of distinct triples in the store
func (s *TripleStore) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	return readCount(txn)
}

// Contains reports whether triple is stored
func (s *TripleStore) Contains(triple *rdf.Triple) (bool, error) {
	et, err := s.encodeTriple(triple)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback()

	_, err = txn.Get(TableSPO, et.spoKey())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// FindSubjectsByUUID returns the stored subjects whose IRI contains id as a
// token. An id that is not a UUID yields no subjects.
func (s *TripleStore) FindSubjectsByUUID(id string) ([]rdf.Subject, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableSubjectUUID, parsed[:])
	if err != nil {
		return nil, err
	}
	defer it.Close()

	cache := make(map[encoding.EncodedTerm]rdf.Term)
	var subjects []rdf.Subject
	for it.Next() {
		key := it.Key()
		if len(key) != len(parsed)+encoding.EncodedTermSize {
			return nil, errors.Newf("invalid uuid index key length: %d", len(key))
		}
		var encoded encoding.EncodedTerm
		copy(encoded[:], key[len(parsed):])

		term, err := s.decodeTerm(txn, encoded, cache)
		if err != nil {
			return nil, err
		}
		subject, ok := term.(rdf.Subject)
		if !ok {
			return nil, errors.Newf("uuid index points at non-subject term %s", term)
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

// decodeTerm looks up the payload of an encoded term and rebuilds it
func (s *TripleStore) decodeTerm(txn Transaction, encoded encoding.EncodedTerm, cache map[encoding.EncodedTerm]rdf.Term) (rdf.Term, error) {
	if term, ok := cache[encoded]; ok {
		return term, nil
	}
	payload, err := txn.Get(TableID2Str, encoded.Hash())
	if err != nil {
		return nil, errors.Wrapf(err, "missing payload for %s term", encoded.Kind())
	}
	term, err := s.decoder.DecodeTerm(encoded, payload)
	if err != nil {
		return nil, err
	}
	cache[encoded] = term
	return term, nil
}
