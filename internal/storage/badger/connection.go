// Package badger provides the BadgerDB-backed cache storage layer.
package badger

import (
	"fmt"
	"os"
	"path/filepath"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/invenio/internal/common"
)

// BadgerDB manages the Badger database connection
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig
}

// NewBadgerDB creates a new Badger database connection. With in_memory
// enabled (the default) nothing touches disk and the caches vanish on
// restart, which matches their process-local semantics.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	var opts badgerdb.Options
	if config.InMemory {
		logger.Debug().Msg("Opening in-memory Badger database")
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		logger.Debug().Str("path", config.Path).Msg("Opening Badger database connection")
		opts = badgerdb.DefaultOptions(config.Path)
	}
	opts = opts.WithLogger(nil) // Disable default badger logger to use arbor

	options := badgerhold.DefaultOptions
	options.Options = opts

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Bool("in_memory", config.InMemory).Msg("Badger database initialized")

	return &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
	}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close closes the database connection
func (b *BadgerDB) Close() error {
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
