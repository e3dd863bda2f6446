// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Greenetwork/offchain-worker/internal/fetch"
	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// Lock states persisted under lockKey. An absent key means the lock was never
// acquired and counts as free.
var (
	lockHeld = []byte{1}
	lockFree = []byte{0}
)

// FetchIfNeeded guarantees the remote fetch happens at most once among
// concurrently running worker instances on this node, and that a cached result
// is reused indefinitely.
//
// The sequence: short-circuit on a cache hit, acquire the lock via an atomic
// compare-and-set, fetch and parse, write the cache, release the lock. The
// lock is released on every failure path. A lock left held by a crash before
// release stays held forever: there is no lease on it.
func (w *Worker) FetchIfNeeded(ctx context.Context) error {
	if info, found, err := w.CachedInfo(); err != nil {
		return err
	} else if found {
		if logservice.LS != nil {
			_ = logservice.LS.Log("info", fmt.Sprintf("cached gh-info: %s", info), "worker", "coordinator")
		}
		return nil
	}

	acquired, err := w.acquireLock()
	if err != nil {
		return err
	}
	if !acquired {
		w.record("lock-skip", "fetch lock held by another instance", 0)
		return ErrAlreadyFetched
	}

	info, err := w.fetchAndParse(ctx)
	if err != nil {
		// Always release, even on error.
		if relErr := w.releaseLock(); relErr != nil && logservice.LS != nil {
			_ = logservice.LS.Log("error", fmt.Sprintf("lock release failed: %v", relErr), "worker", "coordinator")
		}
		return err
	}

	if err := w.writeCache(info); err != nil {
		if relErr := w.releaseLock(); relErr != nil && logservice.LS != nil {
			_ = logservice.LS.Log("error", fmt.Sprintf("lock release failed: %v", relErr), "worker", "coordinator")
		}
		return err
	}
	if err := w.releaseLock(); err != nil {
		return err
	}

	if logservice.LS != nil {
		_ = logservice.LS.Log("info", fmt.Sprintf("fetched gh-info: %s", info), "worker", "coordinator")
	}
	w.record("fetch", fmt.Sprintf("fetched and cached gh-info: %s", info), 0)
	return nil
}

// acquireLock attempts the atomic transition to held. It reports acquired=false
// when the lock is already held or holds an unexpected value.
func (w *Worker) acquireLock() (bool, error) {
	acquired := false
	err := w.local.Mutate(lockKey, func(current []byte, found bool) ([]byte, error) {
		switch {
		case !found, len(current) == 1 && current[0] == lockFree[0]:
			// Never set, or free: take it.
			acquired = true
			return lockHeld, nil
		default:
			// Held, or an unexpected state: leave it alone and skip.
			return current, nil
		}
	})
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// releaseLock unconditionally sets the lock to free.
func (w *Worker) releaseLock() error {
	return w.local.Set(lockKey, lockFree)
}

// fetchAndParse sources the User-Agent value from the sentinel task queue
// entry and performs the remote fetch.
func (w *Worker) fetchAndParse(ctx context.Context) (*fetch.GithubInfo, error) {
	task, found, err := w.ledger.Task(taskSentinelID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &fetch.Error{Stage: fetch.StageHeaderValue, Err: fmt.Errorf("no task queue entry under id %d", taskSentinelID)}
	}

	if logservice.LS != nil {
		_ = logservice.LS.Log("info", fmt.Sprintf("from the task queue: agent %q", task.Header), "worker", "coordinator")
	}
	return w.client.FetchAndParse(ctx, task.Header)
}

// CachedInfo reads the cached fetch result from the local store.
func (w *Worker) CachedInfo() (*fetch.GithubInfo, bool, error) {
	raw, found, err := w.local.Get(cacheKey)
	if err != nil || !found {
		return nil, false, err
	}

	var info fetch.GithubInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, false, fmt.Errorf("corrupt gh-info cache: %w", err)
	}
	return &info, true, nil
}

func (w *Worker) writeCache(info *fetch.GithubInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return w.local.Set(cacheKey, raw)
}
