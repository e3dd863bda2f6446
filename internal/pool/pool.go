// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package pool is the pending-transaction pool in front of the ledger. Signed
// submissions are queued as-is; unsigned submissions pass the admission policy
// first and carry validity metadata (priority, dedup tag, longevity, propagate).
package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Greenetwork/offchain-worker/internal/ledger"
	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// TagPrefix namespaces the dedup tags this module provides.
const TagPrefix = "offchain-worker"

// UnsignedLongevity is the number of blocks an admitted unsigned submission
// stays valid in the pool before it is dropped.
const UnsignedLongevity = 3

// ErrInvalidCall is returned when an unsigned submission proposes anything
// other than submit_number_unsigned.
var ErrInvalidCall = errors.New("call cannot be submitted unsigned")

// ValidTransaction is the metadata attached to an admitted unsigned submission.
type ValidTransaction struct {
	Priority  uint64
	Provides  []string // dedup tags; the pool keeps at most one pending tx per tag
	Longevity uint64   // validity window in blocks
	Propagate bool     // whether peers should gossip this submission
}

// ValidateUnsigned is the stateless admission predicate: only the
// submit_number_unsigned operation may enter the pool without a signature.
// Admitted calls receive the configured priority, a tag derived from the
// operation kind, a three-block validity window and the propagate flag.
func ValidateUnsigned(call ledger.Call, priority uint64) (ValidTransaction, error) {
	if call.Kind != ledger.CallSubmitNumberUnsigned {
		return ValidTransaction{}, fmt.Errorf("%w: %q", ErrInvalidCall, call.Kind)
	}

	return ValidTransaction{
		Priority:  priority,
		Provides:  []string{TagPrefix + "/" + string(ledger.CallSubmitNumberUnsigned)},
		Longevity: UnsignedLongevity,
		Propagate: true,
	}, nil
}

// pendingTx is one queued submission awaiting execution.
type pendingTx struct {
	origin     ledger.Origin
	call       ledger.Call
	priority   uint64
	tags       []string
	validUntil uint64 // 0 = no expiry (signed submissions)
	propagate  bool
}

// Pool queues submissions and drains them into the ledger once per block.
type Pool struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	priority  uint64 // priority granted to admitted unsigned submissions
	lastBlock uint64 // most recent block the pool drained at
	pending   []pendingTx
	seenTags  map[string]bool // dedup tags of currently pending unsigned txs
}

// New creates a pool draining into l. priority is attached to admitted
// unsigned submissions.
func New(l *ledger.Ledger, priority uint64) *Pool {
	return &Pool{
		ledger:   l,
		priority: priority,
		seenTags: make(map[string]bool),
	}
}

// SubmitSigned queues a call signed by account. Effects are asynchronous: the
// call only reaches the ledger when the next block drains the pool.
func (p *Pool) SubmitSigned(account string, call ledger.Call) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, pendingTx{
		origin: ledger.SignedOrigin(account),
		call:   call,
	})
	return nil
}

// SubmitUnsigned queues an unsigned call after running the admission policy.
// A submission whose dedup tag is already pending is silently absorbed:
// concurrent identical unsigned submissions collapse to one.
func (p *Pool) SubmitUnsigned(call ledger.Call) error {
	valid, err := ValidateUnsigned(call, p.priority)
	if err != nil {
		if logservice.LS != nil {
			_ = logservice.LS.Log("warning",
				fmt.Sprintf("rejected unsigned submission: %v", err), "pool", "")
		}
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, tag := range valid.Provides {
		if p.seenTags[tag] {
			if logservice.LS != nil {
				_ = logservice.LS.Log("debug",
					fmt.Sprintf("deduplicated unsigned submission, tag %s already pending", tag),
					"pool", "")
			}
			return nil
		}
	}

	for _, tag := range valid.Provides {
		p.seenTags[tag] = true
	}
	p.pending = append(p.pending, pendingTx{
		origin:     ledger.NoneOrigin(),
		call:       call,
		priority:   valid.Priority,
		tags:       valid.Provides,
		validUntil: p.lastBlock + valid.Longevity,
		propagate:  valid.Propagate,
	})
	return nil
}

// Drain executes every pending submission against the ledger, in submission
// order, as part of producing the given block. Expired unsigned submissions
// are dropped without execution. Execution failures are logged and do not stop
// the drain: a rejected transaction is simply not included.
func (p *Pool) Drain(block uint64) {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.seenTags = make(map[string]bool)
	p.lastBlock = block
	p.mu.Unlock()

	for _, tx := range pending {
		if tx.validUntil != 0 && block > tx.validUntil {
			if logservice.LS != nil {
				_ = logservice.LS.Log("debug",
					fmt.Sprintf("dropped expired unsigned submission %q at block %d", tx.call.Kind, block),
					"pool", "")
			}
			continue
		}

		if err := p.ledger.Execute(tx.origin, tx.call); err != nil {
			if logservice.LS != nil {
				_ = logservice.LS.Log("error",
					fmt.Sprintf("submission %q failed in block %d: %v", tx.call.Kind, block, err),
					"pool", "")
			}
		}
	}
}

// Len returns the number of pending submissions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
