// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package localstore is the node-local persistent key-value store. It is visible
// only to worker instances running on this node and is never part of consensus:
// different nodes may hold divergent cache and lock state.
package localstore

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("offchain")

// Store wraps a Bolt database with the get / set / mutate contract the worker
// consumes. Mutate is the only synchronization primitive in the system: Bolt
// serializes write transactions, so the read-modify-write runs atomically with
// respect to every other caller on this node.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the value stored under key. found is false when the key is absent.
func (s *Store) Get(key string) (value []byte, found bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction.
		value = append([]byte(nil), v...)
		found = true
		return nil
	})
	return value, found, err
}

// Set unconditionally writes value under key.
func (s *Store) Set(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), value)
	})
}

// Mutate atomically replaces the value under key. fn receives the current value
// (found=false when absent) and returns the replacement. If fn returns an error
// the store is left untouched and the error is returned to the caller.
func (s *Store) Mutate(key string, fn func(current []byte, found bool) ([]byte, error)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		cur := b.Get([]byte(key))

		var copied []byte
		if cur != nil {
			copied = append([]byte(nil), cur...)
		}

		next, err := fn(copied, cur != nil)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), next)
	})
}

// Close closes the underlying Bolt database.
func (s *Store) Close() error {
	return s.db.Close()
}
