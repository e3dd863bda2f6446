// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package worker is the per-activation offchain worker: the fetch coordinator
// that arbitrates the remote fetch through a node-local lock, the submission
// client that writes results back into the ledger, and the activation loop
// tying the two together.
package worker

import (
	"errors"

	"github.com/Greenetwork/offchain-worker/internal/fetch"
	"github.com/Greenetwork/offchain-worker/internal/journal"
	"github.com/Greenetwork/offchain-worker/internal/keystore"
	"github.com/Greenetwork/offchain-worker/internal/ledger"
	"github.com/Greenetwork/offchain-worker/internal/localstore"
	"github.com/Greenetwork/offchain-worker/internal/pool"
)

// Local store keys, opaque outside this worker. Prefixed with the module name
// because the local store is shared by every worker on the node.
const (
	cacheKey = "offchain-worker::gh-info"
	lockKey  = "offchain-worker::lock"
)

// taskSentinelID is the queue entry consulted on every activation.
const taskSentinelID uint32 = 1

var (
	// ErrAlreadyFetched means another worker instance holds the fetch lock
	// or the lock is in an unexpected state. Callers treat it as a benign
	// skip, not a failure.
	ErrAlreadyFetched = errors.New("gh-info fetch already in progress")

	// ErrSignedSubmit covers the signed submission path: no local signing
	// identity, no cached result to submit, or a rejected submission.
	ErrSignedSubmit = errors.New("signed submission failed")

	// ErrUnsignedSubmit covers rejected unsigned submissions.
	ErrUnsignedSubmit = errors.New("unsigned submission failed")
)

// Worker wires the coordinator and submission client to their collaborators.
type Worker struct {
	ledger  *ledger.Ledger
	local   *localstore.Store
	pool    *pool.Pool
	keys    *keystore.Keystore
	client  *fetch.Client
	journal *journal.Journal // optional, nil disables journaling
}

// New assembles a worker.
func New(l *ledger.Ledger, local *localstore.Store, p *pool.Pool, keys *keystore.Keystore, client *fetch.Client, j *journal.Journal) *Worker {
	return &Worker{
		ledger:  l,
		local:   local,
		pool:    p,
		keys:    keys,
		client:  client,
		journal: j,
	}
}

func (w *Worker) record(kind, message string, block uint64) {
	if w.journal == nil {
		return
	}
	_, _ = w.journal.Record(kind, "worker", message, block)
}
