// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package worker

import (
	"fmt"

	"github.com/Greenetwork/offchain-worker/internal/ledger"
	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// SignedSubmitAgent submits the cached login value as a signed submit_agent
// transaction from every locally held account. The first per-account failure
// logs and aborts; remaining accounts are not attempted.
//
// Submission is fire-and-forget: the effect is durable only once the ledger
// executes the transaction in a later block.
func (w *Worker) SignedSubmitAgent() error {
	if !w.keys.CanSign() {
		if logservice.LS != nil {
			_ = logservice.LS.Log("error", "no local signing account available", "worker", "submit")
		}
		return fmt.Errorf("%w: no local signing account", ErrSignedSubmit)
	}

	info, found, err := w.CachedInfo()
	if err != nil {
		return err
	}
	if !found {
		// Nothing fetched yet, nothing to submit this cycle.
		if logservice.LS != nil {
			_ = logservice.LS.Log("debug", "no cached gh-info to submit", "worker", "submit")
		}
		return nil
	}

	if logservice.LS != nil {
		_ = logservice.LS.Log("info", fmt.Sprintf("cached gh-info in submit: %s", info), "worker", "submit")
	}

	for _, acct := range w.keys.Accounts() {
		if err := w.pool.SubmitSigned(acct, ledger.SubmitAgentSigned(info.Login)); err != nil {
			if logservice.LS != nil {
				_ = logservice.LS.Log("error",
					fmt.Sprintf("[%s] failed to submit agent: %v", acct, err), "worker", "submit")
			}
			return fmt.Errorf("%w: account %s: %v", ErrSignedSubmit, acct, err)
		}
		w.record("submit", fmt.Sprintf("signed agent submission %q from %s", info.Login, acct), 0)
	}
	return nil
}

// SignedSubmitNumber submits the block ordinal as a signed number from every
// locally held account.
func (w *Worker) SignedSubmitNumber(blockOrdinal uint64) error {
	if !w.keys.CanSign() {
		if logservice.LS != nil {
			_ = logservice.LS.Log("error", "no local signing account available", "worker", "submit")
		}
		return fmt.Errorf("%w: no local signing account", ErrSignedSubmit)
	}

	for _, acct := range w.keys.Accounts() {
		if err := w.pool.SubmitSigned(acct, ledger.SubmitNumberSigned(blockOrdinal)); err != nil {
			if logservice.LS != nil {
				_ = logservice.LS.Log("error",
					fmt.Sprintf("[%s] failed to submit number: %v", acct, err), "worker", "submit")
			}
			return fmt.Errorf("%w: account %s: %v", ErrSignedSubmit, acct, err)
		}
		w.record("submit", fmt.Sprintf("signed number submission %d from %s", blockOrdinal, acct), blockOrdinal)
	}
	return nil
}

// UnsignedSubmitNumber submits the block ordinal as an unsigned number. The
// pool's admission policy decides whether it enters the pending set.
func (w *Worker) UnsignedSubmitNumber(blockOrdinal uint64) error {
	if err := w.pool.SubmitUnsigned(ledger.SubmitNumberUnsigned(blockOrdinal)); err != nil {
		if logservice.LS != nil {
			_ = logservice.LS.Log("error",
				fmt.Sprintf("failed to submit unsigned number: %v", err), "worker", "submit")
		}
		return fmt.Errorf("%w: %v", ErrUnsignedSubmit, err)
	}
	w.record("submit", fmt.Sprintf("unsigned number submission %d", blockOrdinal), blockOrdinal)
	return nil
}
