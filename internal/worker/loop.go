// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// OnActivation is the per-block worker entry point. Exactly one of the two
// branches runs per activation: when the queue flag is set it is drained and
// the fetch coordinator runs; otherwise the cached result is submitted as a
// signed agent transaction.
//
// Every error here is local to this activation. Nothing is rolled back in
// ledger state and nothing is retried until the next activation.
func (w *Worker) OnActivation(ctx context.Context, blockNumber uint64) {
	if logservice.LS != nil {
		_ = logservice.LS.Log("info",
			fmt.Sprintf("entering offchain worker at block %d", blockNumber),
			"worker", fmt.Sprintf("block-%d", blockNumber))
	}

	available, err := w.ledger.DrainQueueFlag()
	if err != nil {
		if logservice.LS != nil {
			_ = logservice.LS.Log("error", fmt.Sprintf("queue flag read failed: %v", err), "worker", "loop")
		}
		return
	}

	if available {
		if logservice.LS != nil {
			_ = logservice.LS.Log("info", "there is a task in the queue", "worker", "loop")
		}
		err = w.FetchIfNeeded(ctx)
	} else {
		err = w.SignedSubmitAgent()
	}

	if err != nil {
		if errors.Is(err, ErrAlreadyFetched) {
			// Benign: another instance is fetching. Skip this cycle.
			if logservice.LS != nil {
				_ = logservice.LS.Log("debug", "skipping fetch, already in progress", "worker", "loop")
			}
			return
		}
		if logservice.LS != nil {
			_ = logservice.LS.Log("error",
				fmt.Sprintf("activation at block %d failed: %v", blockNumber, err),
				"worker", "loop")
		}
	}
}
