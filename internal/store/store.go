// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

// Package store persists ArNS records in BadgerDB, keyed by name.
//
// Two write paths exist. PutAll overwrites whole records and is meant for the
// cold-start seed only. PutAllSmart merges field by field (see mergeRecord) so
// that partial batches from later syncs never regress a resolved field.
//
// Writes are serialized by the store; reads run concurrently against Badger
// snapshots. Every applying write bumps an in-process version that read paths
// use to key memoized aggregates.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/logging"
	"github.com/tomtom215/arnscope/internal/metrics"
	"github.com/tomtom215/arnscope/internal/models"
)

// recordKeyPrefix namespaces records inside a Badger DB shared with the cache.
const recordKeyPrefix = "record:"

var (
	// ErrRecordNotFound is returned by GetOne for an unknown name.
	ErrRecordNotFound = errors.New("record not found")

	// ErrEmptyName rejects records without a name. The name is the only key.
	ErrEmptyName = errors.New("record name is empty")
)

// MergeResult reports what a PutAllSmart batch did per record.
type MergeResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// Applied is the number of records that caused a write.
func (r MergeResult) Applied() int {
	return r.Inserted + r.Updated
}

// Store is the BadgerDB record store.
type Store struct {
	db      *badger.DB
	writeMu sync.Mutex
	version atomic.Uint64
}

// New wraps an open Badger DB. The caller owns the DB and closes it.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

func recordKey(name string) []byte {
	return []byte(recordKeyPrefix + name)
}

// Version returns the data version. It changes after every write that
// modified at least one record, and after Clear.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Ping reports whether the underlying DB can serve reads.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// PutAll upserts every record, replacing any stored record of the same name.
func (s *Store) PutAll(ctx context.Context, records []models.Record) error {
	if err := validateNames(records); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	w := newBatchWriter(s.db)
	defer w.discard()

	for i := range records {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		data, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("marshal record %q: %w", records[i].Name, err)
		}
		if err := w.set(recordKey(records[i].Name), data); err != nil {
			return fmt.Errorf("put record %q: %w", records[i].Name, err)
		}
	}
	if err := w.commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}

	if len(records) > 0 {
		s.version.Add(1)
	}
	metrics.StoreWrites.WithLabelValues("put_all").Inc()
	s.refreshGauge()

	logging.Debug().Int("records", len(records)).Msg("Records stored")
	return nil
}

// PutAllSmart inserts unknown records as-is and merges known ones with
// mergeRecord. Records whose tracked fields did not change are not rewritten.
// Duplicate names within one batch are merged in order.
func (s *Store) PutAllSmart(ctx context.Context, records []models.Record) (MergeResult, error) {
	var result MergeResult
	if err := validateNames(records); err != nil {
		return result, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	w := newBatchWriter(s.db)
	defer w.discard()

	for i := range records {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}
		incoming := &records[i]
		key := recordKey(incoming.Name)

		existing, found, err := w.get(key)
		if err != nil {
			return result, fmt.Errorf("read record %q: %w", incoming.Name, err)
		}

		next := *incoming
		if found {
			merged, changed := mergeRecord(existing, *incoming)
			if !changed {
				result.Unchanged++
				continue
			}
			next = merged
			result.Updated++
		} else {
			result.Inserted++
		}

		data, err := json.Marshal(&next)
		if err != nil {
			return result, fmt.Errorf("marshal record %q: %w", next.Name, err)
		}
		if err := w.set(key, data); err != nil {
			return result, fmt.Errorf("put record %q: %w", next.Name, err)
		}
	}
	if err := w.commit(); err != nil {
		return result, fmt.Errorf("commit merge: %w", err)
	}

	if result.Applied() > 0 {
		s.version.Add(1)
		s.refreshGauge()
	}
	metrics.RecordMerge(result.Inserted, result.Updated, result.Unchanged)

	logging.Debug().
		Int("inserted", result.Inserted).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Msg("Records merged")
	return result, nil
}

// GetAll returns every stored record in key order.
func (s *Store) GetAll(ctx context.Context) ([]models.Record, error) {
	var records []models.Record

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(recordKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Rewind(); it.Valid(); it.Next() {
			n++
			if n%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			var rec models.Record
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// GetOne returns the record with exactly this name, or ErrRecordNotFound.
func (s *Store) GetOne(ctx context.Context, name string) (models.Record, error) {
	var rec models.Record
	if err := ctx.Err(); err != nil {
		return rec, err
	}
	if name == "" {
		return rec, ErrEmptyName
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("get record: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// Clear removes every record. Cache entries sharing the DB are untouched.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.db.DropPrefix([]byte(recordKeyPrefix)); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	s.version.Add(1)
	metrics.StoreWrites.WithLabelValues("clear").Inc()
	metrics.StoreRecords.Set(0)

	logging.Info().Msg("Record store cleared")
	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recordKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func (s *Store) refreshGauge() {
	if n, err := s.Count(context.Background()); err == nil {
		metrics.StoreRecords.Set(float64(n))
	}
}

func validateNames(records []models.Record) error {
	for i := range records {
		if records[i].Name == "" {
			return fmt.Errorf("record %d: %w", i, ErrEmptyName)
		}
	}
	return nil
}
