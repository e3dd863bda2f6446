// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package ledger

// TaskQueueTable holds pending fetch work descriptions, keyed by caller-chosen id.
// Entries are never deleted individually: clearing the queue only flips the
// availability flag off, so stale rows remain until overwritten.
type TaskQueueTable struct{}

func (t TaskQueueTable) Name() string {
	return "task_queue"
}

func (t TaskQueueTable) Schema() string {
	return `
		id INTEGER PRIMARY KEY,
		target TEXT NOT NULL,
		header TEXT NOT NULL
	`
}

// StateTable is the generic key-value slice of ledger state: the queue
// availability flag, the number buffer and the last submitted agent all live
// here as JSON-encoded values.
type StateTable struct{}

func (t StateTable) Name() string {
	return "state"
}

func (t StateTable) Schema() string {
	return `
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	`
}
