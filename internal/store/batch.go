// ArNScope - ArNS Name Registry Explorer and Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/arnscope

package store

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/arnscope/internal/models"
)

// batchWriter spreads a large batch over as many read-write transactions as
// Badger needs. When a Set hits ErrTxnTooBig the pending transaction is
// committed and the Set retried in a fresh one. Each record's new value is
// derived only from its input and its stored value, so a batch that fails
// after a partial commit can be replayed safely.
type batchWriter struct {
	db  *badger.DB
	txn *badger.Txn
}

func newBatchWriter(db *badger.DB) *batchWriter {
	return &batchWriter{db: db, txn: db.NewTransaction(true)}
}

// get reads a record through the current transaction, which sees its own
// pending writes.
func (w *batchWriter) get(key []byte) (models.Record, bool, error) {
	var rec models.Record
	item, err := w.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err == nil, err
}

func (w *batchWriter) set(key, val []byte) error {
	err := w.txn.Set(key, val)
	if !errors.Is(err, badger.ErrTxnTooBig) {
		return err
	}
	if err := w.txn.Commit(); err != nil {
		return err
	}
	w.txn = w.db.NewTransaction(true)
	return w.txn.Set(key, val)
}

func (w *batchWriter) commit() error {
	return w.txn.Commit()
}

// discard is safe to call after commit.
func (w *batchWriter) discard() {
	w.txn.Discard()
}
