package main

import (
	"os"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/internal/logger"
	"github.com/aleksaelezovic/factstore/internal/storage"
	"github.com/aleksaelezovic/factstore/pkg/rdf"
	"github.com/aleksaelezovic/factstore/pkg/store"
	"go.uber.org/zap"
)

// openStore opens the storage selected by the loaded configuration
func openStore() (*store.TripleStore, error) {
	backend, err := storage.Open(storage.Config{
		Path:         cfg.Storage.Path,
		InMemory:     cfg.Storage.InMemory,
		SyncWrites:   cfg.Storage.SyncWrites,
		MemTableSize: cfg.Storage.MemTableSize,
		Logger:       logger.Named("badger").WithOptions(zap.IncreaseLevel(zap.WarnLevel)),
	})
	if err != nil {
		return nil, err
	}

	logger.Logger.Debugw("storage opened",
		"in_memory", cfg.Storage.InMemory,
		"path", cfg.Storage.Path)

	return store.NewTripleStore(backend, store.WithLogger(logger.Named("store"))), nil
}

// loadFiles parses N-Triples files and adds them to st, one batch per file
func loadFiles(st *store.TripleStore, paths []string) (int, error) {
	total := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return total, errors.Wrapf(err, "read %s", path)
		}
		triples, err := rdf.ParseNTriples(string(data))
		if err != nil {
			return total, errors.Wrapf(err, "parse %s", path)
		}
		added, err := st.AddAll(triples)
		if err != nil {
			return total, errors.Wrapf(err, "load %s", path)
		}
		logger.Logger.Infow("file loaded", "path", path, "parsed", len(triples), "added", added)
		total += added
	}
	return total, nil
}
