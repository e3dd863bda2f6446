// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package journal records worker activity (fetch attempts, lock skips, submissions,
// block production) in a Badger store so it survives the process and can be
// exported for offline analysis. Journal entries are observability data, never
// consensus state.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Entry is a single journal record.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // ISO8601 for consistency
	Kind      string `json:"kind"`      // e.g. "fetch", "lock-skip", "submit", "block"
	Entity    string `json:"entity"`    // component that produced the entry
	Block     uint64 `json:"block"`     // block ordinal of the activation, 0 if none
	Message   string `json:"message"`
}

// KeyEntry generates a Badger key for a journal entry.
// Format: jrnl:{kind}:{uuid}
func KeyEntry(kind, id string) []byte {
	return []byte(fmt.Sprintf("jrnl:%s:%s", kind, id))
}

// PrefixByKind generates a prefix for iterating entries of one kind.
func PrefixByKind(kind string) []byte {
	return []byte(fmt.Sprintf("jrnl:%s:", kind))
}

// PrefixAll generates a prefix for iterating all entries.
func PrefixAll() []byte {
	return []byte("jrnl:")
}

// Journal is a handle on the Badger-backed activity journal.
type Journal struct {
	db *badger.DB
}

// Open opens or creates the journal at dir.
func Open(dir string) (*Journal, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record appends a new entry. The entry ID is generated here and returned.
func (j *Journal) Record(kind, entity, message string, block uint64) (string, error) {
	entry := Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Kind:      kind,
		Entity:    entity,
		Block:     block,
		Message:   message,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("failed to serialize journal entry: %w", err)
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(KeyEntry(kind, entry.ID), data)
	})
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

// IterOptions configures how entries are iterated.
type IterOptions struct {
	// Kind restricts iteration to one entry kind ("" = all kinds)
	Kind string
	// Limit is the maximum number of entries to visit (0 = no limit)
	Limit int
}

// Iterate visits entries matching opts and calls fn for each. If fn returns an
// error, iteration stops and that error is returned.
func (j *Journal) Iterate(opts IterOptions, fn func(Entry) error) error {
	prefix := PrefixAll()
	if opts.Kind != "" {
		prefix = PrefixByKind(opts.Kind)
	}

	return j.db.View(func(txn *badger.Txn) error {
		badgerOpts := badger.DefaultIteratorOptions
		badgerOpts.Prefix = prefix

		it := txn.NewIterator(badgerOpts)
		defer it.Close()

		count := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if opts.Limit > 0 && count >= opts.Limit {
				break
			}

			err := it.Item().Value(func(val []byte) error {
				var entry Entry
				if err := json.Unmarshal(val, &entry); err != nil {
					return fmt.Errorf("failed to deserialize journal entry: %w", err)
				}
				return fn(entry)
			})
			if err != nil {
				return err
			}
			count++
		}
		return nil
	})
}

// Close closes the underlying Badger database.
func (j *Journal) Close() error {
	return j.db.Close()
}
