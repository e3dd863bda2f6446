// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package ledger models the shared, consensus-replicated state store. All
// mutations go through Execute, which runs calls strictly sequentially: the
// execution domain is single-threaded and deterministic, so there is no
// parallelism to guard against inside a call.
package ledger

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// NumVecLen bounds the number buffer: once full, new values overwrite the slot
// at index (length mod NumVecLen).
const NumVecLen = 10

// State keys within the state table.
const (
	keyQueueAvailable = "queue_available"
	keyNumbers        = "numbers"
	keyNumbersCount   = "numbers_count"
	keyUserAgent      = "user_agent"
)

var (
	// ErrBadOrigin is returned when a call's origin does not satisfy its
	// authentication requirement.
	ErrBadOrigin = errors.New("bad origin")
	// ErrUnknownCall is returned for a call kind the ledger does not dispatch.
	ErrUnknownCall = errors.New("unknown call")
)

// TaskQueueEntry describes one unit of pending fetch work.
type TaskQueueEntry struct {
	ID     uint32
	Target string // remote request target
	Header string // User-Agent header value for the fetch
}

// NewNumberEvent is emitted whenever a number is accepted into the buffer.
// Account is nil for unsigned submissions.
type NewNumberEvent struct {
	Account *string
	Number  uint64
}

// Ledger owns the consensus-replicated state and dispatches calls against it.
type Ledger struct {
	db        *DB
	execMu    sync.Mutex // serializes the execution domain
	observers []func(NewNumberEvent)
}

// Open opens the ledger state at dbPath and registers its tables.
func Open(dbPath string) (*Ledger, error) {
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger state: %w", err)
	}

	for _, def := range []TableDef{TaskQueueTable{}, StateTable{}} {
		if err := db.RegisterTable(def); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to register table %s: %w", def.Name(), err)
		}
	}

	return &Ledger{db: db}, nil
}

// Subscribe registers an observer for NewNumber events. Observers run inside
// the execution domain and must not call back into the ledger.
func (l *Ledger) Subscribe(fn func(NewNumberEvent)) {
	l.execMu.Lock()
	defer l.execMu.Unlock()
	l.observers = append(l.observers, fn)
}

// Execute dispatches a single call inside the execution domain.
func (l *Ledger) Execute(origin Origin, call Call) error {
	l.execMu.Lock()
	defer l.execMu.Unlock()

	switch call.Kind {
	case CallInsertTask:
		if err := ensureSigned(origin); err != nil {
			return err
		}
		return l.insertTask(call.TaskID, call.Target, call.Header)

	case CallClearTasks:
		if err := ensureSigned(origin); err != nil {
			return err
		}
		return l.setState(keyQueueAvailable, false)

	case CallSubmitAgentSigned:
		if err := ensureSigned(origin); err != nil {
			return err
		}
		return l.updateAgent(call.Agent)

	case CallSubmitNumberSigned:
		if err := ensureSigned(origin); err != nil {
			return err
		}
		acct := origin.Account
		return l.appendOrReplaceNumber(&acct, call.Number)

	case CallSubmitNumberUnsigned:
		if err := ensureNone(origin); err != nil {
			return err
		}
		return l.appendOrReplaceNumber(nil, call.Number)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCall, call.Kind)
	}
}

// insertTask writes a task entry and flips the availability flag on. A second
// insert with the same id overwrites silently.
func (l *Ledger) insertTask(id uint32, target, header string) error {
	_, err := l.db.Exec(
		"INSERT INTO task_queue (id, target, header) VALUES (?, ?, ?) "+
			"ON CONFLICT(id) DO UPDATE SET target = excluded.target, header = excluded.header",
		id, target, header,
	)
	if err != nil {
		return err
	}
	return l.setState(keyQueueAvailable, true)
}

func (l *Ledger) updateAgent(agent string) error {
	if logservice.LS != nil {
		_ = logservice.LS.Log("info", fmt.Sprintf("agent on chain set to %q", agent), "ledger", "")
	}
	return l.setState(keyUserAgent, agent)
}

// appendOrReplaceNumber adds a value to the buffer. The first NumVecLen
// submissions append; submission k thereafter overwrites the slot at
// (k mod NumVecLen), so the buffer is a ring over the submission ordinal.
// The running average is logged, never persisted.
func (l *Ledger) appendOrReplaceNumber(who *string, number uint64) error {
	var numbers []uint64
	if err := l.getState(keyNumbers, &numbers); err != nil {
		return err
	}
	var count uint64
	if err := l.getState(keyNumbersCount, &count); err != nil {
		return err
	}

	if len(numbers) < NumVecLen {
		numbers = append(numbers, number)
	} else {
		numbers[count%NumVecLen] = number
	}

	if err := l.setState(keyNumbers, numbers); err != nil {
		return err
	}
	if err := l.setState(keyNumbersCount, count+1); err != nil {
		return err
	}

	if logservice.LS != nil {
		_ = logservice.LS.Log("info",
			fmt.Sprintf("current average of numbers is %d", average(numbers)),
			"ledger", "")
	}

	event := NewNumberEvent{Account: who, Number: number}
	for _, fn := range l.observers {
		fn(event)
	}
	return nil
}

// average computes the truncating arithmetic mean of the buffer.
func average(numbers []uint64) uint64 {
	if len(numbers) == 0 {
		return 0
	}
	var sum uint64
	for _, n := range numbers {
		sum += n
	}
	return sum / uint64(len(numbers))
}

// QueueAvailable reports whether a task is waiting to be fetched.
func (l *Ledger) QueueAvailable() (bool, error) {
	var available bool
	if err := l.getState(keyQueueAvailable, &available); err != nil {
		return false, err
	}
	return available, nil
}

// DrainQueueFlag atomically reads the availability flag and, when set, clears
// it. Returns the value the flag held before draining.
func (l *Ledger) DrainQueueFlag() (bool, error) {
	l.execMu.Lock()
	defer l.execMu.Unlock()

	var available bool
	if err := l.getState(keyQueueAvailable, &available); err != nil {
		return false, err
	}
	if available {
		if err := l.setState(keyQueueAvailable, false); err != nil {
			return false, err
		}
	}
	return available, nil
}

// Task returns the queue entry stored under id.
func (l *Ledger) Task(id uint32) (TaskQueueEntry, bool, error) {
	var entry TaskQueueEntry
	row := l.db.QueryRow("SELECT id, target, header FROM task_queue WHERE id = ?", id)
	err := row.Scan(&entry.ID, &entry.Target, &entry.Header)
	if errors.Is(err, sql.ErrNoRows) {
		return TaskQueueEntry{}, false, nil
	}
	if err != nil {
		return TaskQueueEntry{}, false, err
	}
	return entry, true, nil
}

// Numbers returns a copy of the current number buffer.
func (l *Ledger) Numbers() ([]uint64, error) {
	var numbers []uint64
	if err := l.getState(keyNumbers, &numbers); err != nil {
		return nil, err
	}
	return numbers, nil
}

// Average returns the truncating mean of the current number buffer.
func (l *Ledger) Average() (uint64, error) {
	numbers, err := l.Numbers()
	if err != nil {
		return 0, err
	}
	return average(numbers), nil
}

// UserAgentOnChain returns the last submitted agent string.
func (l *Ledger) UserAgentOnChain() (string, error) {
	var agent string
	if err := l.getState(keyUserAgent, &agent); err != nil {
		return "", err
	}
	return agent, nil
}

// getState reads a state value into out. An absent key leaves out untouched.
func (l *Ledger) getState(key string, out any) error {
	var raw string
	row := l.db.QueryRow("SELECT value FROM state WHERE key = ?", key)
	err := row.Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), out)
}

// setState writes a state value as JSON.
func (l *Ledger) setState(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(
		"INSERT INTO state (key, value) VALUES (?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(raw),
	)
	return err
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
