package storage

import (
	"os"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/store"
	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Config holds configuration for a BadgerDB-backed storage.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory is true.
	Path string

	// InMemory keeps all data in RAM with no disk persistence.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// MemTableSize in bytes. It also bounds how many writes fit in one
	// transaction. Zero keeps Badger's default.
	MemTableSize int64

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *zap.Logger
}

// DefaultConfig returns a persistent configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: true,
	}
}

// InMemoryConfig returns a configuration with no disk I/O.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// BadgerStorage implements store.Storage using BadgerDB
type BadgerStorage struct {
	db       *badger.DB
	inMemory bool
}

// Open creates a BadgerDB-backed storage from cfg.
func Open(cfg Config) (*BadgerStorage, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent storage")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrapf(err, "create storage directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.MemTableSize > 0 {
		opts = opts.WithMemTableSize(cfg.MemTableSize)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger database")
	}

	return &BadgerStorage{db: db, inMemory: cfg.InMemory}, nil
}

// NewBadgerStorage opens a persistent storage at path
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	return Open(DefaultConfig(path))
}

// NewMemoryStorage opens an in-memory storage
func NewMemoryStorage() (*BadgerStorage, error) {
	return Open(InMemoryConfig())
}

// Begin starts a new transaction
func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	txn := s.db.NewTransaction(writable)
	return &BadgerTransaction{
		txn:      txn,
		writable: writable,
	}, nil
}

// DropAll removes all keys
func (s *BadgerStorage) DropAll() error {
	return s.db.DropAll()
}

// Close closes the storage
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk
func (s *BadgerStorage) Sync() error {
	if s.inMemory {
		return nil
	}
	return s.db.Sync()
}

var (
	_ store.Storage     = (*BadgerStorage)(nil)
	_ store.Transaction = (*BadgerTransaction)(nil)
	_ store.Iterator    = (*BadgerIterator)(nil)
)

// BadgerTransaction implements store.Transaction using BadgerDB
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

// Get retrieves a value by key
func (t *BadgerTransaction) Get(table store.Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(store.PrefixKey(table, key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Set stores a key-value pair
func (t *BadgerTransaction) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	if err := t.txn.Set(store.PrefixKey(table, key), value); err != nil {
		return wrapTxnError(err, table)
	}
	return nil
}

// Delete removes a key
func (t *BadgerTransaction) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	if err := t.txn.Delete(store.PrefixKey(table, key)); err != nil {
		return wrapTxnError(err, table)
	}
	return nil
}

func wrapTxnError(err error, table store.Table) error {
	if errors.Is(err, badger.ErrTxnTooBig) {
		return errors.WithHint(
			errors.Wrapf(err, "write to %s", table),
			"split the batch or raise storage.mem_table_size",
		)
	}
	return errors.Wrapf(err, "write to %s", table)
}

// Scan iterates over all keys in table starting with prefix
func (t *BadgerTransaction) Scan(table store.Table, prefix []byte) (store.Iterator, error) {
	tablePrefix := store.TablePrefix(table)
	scanPrefix := store.PrefixKey(table, prefix)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = scanPrefix
	opts.PrefetchValues = false

	return &BadgerIterator{
		it:         t.txn.NewIterator(opts),
		prefix:     tablePrefix,
		scanPrefix: scanPrefix,
	}, nil
}

// Commit commits the transaction
func (t *BadgerTransaction) Commit() error {
	if err := t.txn.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Rollback rolls back the transaction. Safe to call after Commit.
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements store.Iterator using BadgerDB
type BadgerIterator struct {
	it         *badger.Iterator
	prefix     []byte // table prefix stripped from keys
	scanPrefix []byte
	started    bool
	hasValue   bool
}

// Next advances to the next item
func (i *BadgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.scanPrefix)
		i.started = true
	} else {
		i.it.Next()
	}

	i.hasValue = i.it.ValidForPrefix(i.scanPrefix)
	return i.hasValue
}

// Key returns a copy of the current key without the table prefix
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}
	key := i.it.Item().KeyCopy(nil)
	return key[len(i.prefix):]
}

// Value returns the current value
func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}
	return i.it.Item().ValueCopy(nil)
}

// Close closes the iterator
func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}
