package store

import (
	"github.com/aleksaelezovic/factstore/internal/errors"
)

// Errors returned by Storage implementations.
var (
	ErrNotFound      = errors.ErrNotFound
	ErrTransactionRO = errors.ErrReadOnly
)

// Storage is the key-value engine a TripleStore persists into.
// Every table shares one keyspace, namespaced by a one-byte table prefix.
type Storage interface {
	Begin(writable bool) (Transaction, error)

	// DropAll deletes the contents of every table.
	DropAll() error

	// Sync flushes pending writes. In-memory engines treat it as a no-op.
	Sync() error

	Close() error
}

// Reader is the read half of a transaction.
type Reader interface {
	// Get returns ErrNotFound when key is absent from table.
	Get(table Table, key []byte) ([]byte, error)

	// Scan walks the keys of table starting with prefix, in key order.
	// A nil prefix walks the whole table.
	Scan(table Table, prefix []byte) (Iterator, error)
}

// Writer is the write half of a transaction. Both methods return
// ErrTransactionRO on a read-only transaction.
type Writer interface {
	Set(table Table, key, value []byte) error
	Delete(table Table, key []byte) error
}

// Transaction sees a consistent snapshot. Its writes are visible to itself
// immediately and to everyone else only after Commit, all at once.
type Transaction interface {
	Reader
	Writer

	Commit() error

	// Rollback discards pending writes. Calling it after Commit is harmless.
	Rollback() error
}

// Iterator walks the result of Scan. Keys have the table prefix stripped.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Close() error
}

// Table names one logical keyspace inside the storage.
type Table byte

const (
	// hash -> term payload
	TableID2Str Table = iota

	// Each triple is stored three times: keyed subject, predicate and
	// object first. Values are empty.
	TableSPO
	TablePOS
	TableOSP

	// uuid(16) + encoded subject -> empty
	TableSubjectUUID

	// encoded subject -> big-endian number of stored triples, kept only
	// for subjects that appear in TableSubjectUUID
	TableSubjectRefs

	// "count" -> big-endian uint64
	TableMeta

	TableCount
)

var tableNames = [TableCount]string{
	TableID2Str:      "id2str",
	TableSPO:         "spo",
	TablePOS:         "pos",
	TableOSP:         "osp",
	TableSubjectUUID: "subject_uuid",
	TableSubjectRefs: "subject_refs",
	TableMeta:        "meta",
}

func (t Table) String() string {
	if t < TableCount {
		return tableNames[t]
	}
	return "unknown"
}

// TablePrefix returns the key prefix that namespaces table.
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey returns key namespaced under table.
func PrefixKey(table Table, key []byte) []byte {
	return append([]byte{byte(table)}, key...)
}
