// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package node assembles the whole worker node and drives block production.
// Each produced block first drains the transaction pool inside the ledger
// execution domain, then spawns one offchain worker activation outside it.
package node

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Greenetwork/offchain-worker/internal/configs"
	"github.com/Greenetwork/offchain-worker/internal/fetch"
	"github.com/Greenetwork/offchain-worker/internal/journal"
	"github.com/Greenetwork/offchain-worker/internal/keystore"
	"github.com/Greenetwork/offchain-worker/internal/ledger"
	"github.com/Greenetwork/offchain-worker/internal/localstore"
	"github.com/Greenetwork/offchain-worker/internal/logservice"
	"github.com/Greenetwork/offchain-worker/internal/pool"
	"github.com/Greenetwork/offchain-worker/internal/worker"
)

// Node owns every component of a running worker node.
type Node struct {
	cfg configs.NodeConfig

	ledger  *ledger.Ledger
	local   *localstore.Store
	journal *journal.Journal
	pool    *pool.Pool
	worker  *worker.Worker

	block uint64
	wg    sync.WaitGroup
}

// New opens the stores and wires the components together.
func New(cfg configs.NodeConfig) (*Node, error) {
	l, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}

	local, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		l.Close()
		return nil, err
	}

	jrnl, err := journal.Open(cfg.JournalPath)
	if err != nil {
		local.Close()
		l.Close()
		return nil, err
	}

	p := pool.New(l, cfg.UnsignedPriority)
	keys := keystore.New(cfg.Accounts)
	client := fetch.NewClient(cfg.FetchEndpoint, time.Duration(cfg.FetchTimeoutMillis)*time.Millisecond)
	w := worker.New(l, local, p, keys, client, jrnl)

	n := &Node{
		cfg:     cfg,
		ledger:  l,
		local:   local,
		journal: jrnl,
		pool:    p,
		worker:  w,
	}

	l.Subscribe(func(ev ledger.NewNumberEvent) {
		who := "none"
		if ev.Account != nil {
			who = *ev.Account
		}
		if logservice.LS != nil {
			_ = logservice.LS.Log("info",
				fmt.Sprintf("NewNumber(%s, %d)", who, ev.Number), "node", "events")
		}
		_, _ = jrnl.Record("event", "ledger", fmt.Sprintf("NewNumber(%s, %d)", who, ev.Number), n.block)
	})

	return n, nil
}

// Ledger exposes the ledger for command-line inspection and direct dispatch.
func (n *Node) Ledger() *ledger.Ledger { return n.ledger }

// Pool exposes the transaction pool.
func (n *Node) Pool() *pool.Pool { return n.pool }

// Worker exposes the offchain worker.
func (n *Node) Worker() *worker.Worker { return n.worker }

// Run produces blocks until ctx is cancelled. Overlapping worker activations
// are possible when an activation outlives the block interval; the fetch lock
// arbitrates them.
func (n *Node) Run(ctx context.Context) {
	interval := time.Duration(n.cfg.BlockIntervalMillis) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if logservice.LS != nil {
		_ = logservice.LS.Log("info",
			fmt.Sprintf("node started, producing a block every %s", interval), "node", "")
	}

	for {
		select {
		case <-ctx.Done():
			if logservice.LS != nil {
				_ = logservice.LS.Log("info", "node shutting down", "node", "")
			}
			n.wg.Wait()
			return
		case <-ticker.C:
			n.produceBlock(ctx)
		}
	}
}

// produceBlock runs one block: drain the pool in the ledger domain, then
// spawn the worker activation in its own goroutine.
func (n *Node) produceBlock(ctx context.Context) {
	n.block++
	block := n.block

	n.pool.Drain(block)
	_, _ = n.journal.Record("block", "node", fmt.Sprintf("produced block %d", block), block)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.worker.OnActivation(ctx, block)
	}()
}

// Close releases every store. Call after Run has returned.
func (n *Node) Close() error {
	var firstErr error
	for _, c := range []func() error{n.journal.Close, n.local.Close, n.ledger.Close} {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
