// Package badger provides a persistent dedup ledger on BadgerDB.
//
// Records are stored as JSON under "dedup:<hash>". Record runs in a single
// read-write transaction, so the first writer for a hash wins even across
// goroutines.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure Ledger implements the interface.
var _ driven.DedupLedger = (*Ledger)(nil)

const recordPrefix = "dedup:"

// badgerLogger routes badger's own logging through the application logger.
type badgerLogger struct{}

var _ badger.Logger = badgerLogger{}

func (badgerLogger) Errorf(msg string, items ...any) { logger.Error("badger: "+msg, items...) }
func (badgerLogger) Warningf(msg string, items ...any) { logger.Warn("badger: "+msg, items...) }
func (badgerLogger) Infof(msg string, items ...any) { logger.Debug("badger: "+msg, items...) }
func (badgerLogger) Debugf(msg string, items ...any) { logger.Debug("badger: "+msg, items...) }

// Ledger is a BadgerDB-backed driven.DedupLedger.
type Ledger struct {
	db *badger.DB
}

// Open opens the ledger at path, creating the directory if needed.
// An empty path with inMemory set opens a volatile ledger.
func Open(path string, inMemory bool) (*Ledger, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
			if err := os.MkdirAll(path, 0700); err != nil {
				return nil, fmt.Errorf("creating ledger directory: %w", err)
			}
		} else if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", path)
		}
		opts = badger.DefaultOptions(path)
	}

	opts.Logger = badgerLogger{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Lookup returns the record for hash, or domain.ErrNotFound.
func (l *Ledger) Lookup(_ context.Context, hash string) (*domain.DedupRecord, error) {
	var record domain.DedupRecord

	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", hash, err)
	}
	return &record, nil
}

// Record stores a mapping unless one already exists for the hash.
func (l *Ledger) Record(_ context.Context, record domain.DedupRecord) error {
	if record.Hash == "" {
		return fmt.Errorf("%w: empty hash", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshalling record: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		key := recordKey(record.Hash)
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrConflict) {
		// A concurrent writer recorded the hash first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("recording %s: %w", record.Hash, err)
	}
	return nil
}

// List returns all records, newest first.
func (l *Ledger) List(_ context.Context) ([]domain.DedupRecord, error) {
	var records []domain.DedupRecord

	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record domain.DedupRecord
			if err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func recordKey(hash string) []byte {
	return []byte(recordPrefix + hash)
}
