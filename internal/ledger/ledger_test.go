// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package ledger

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestInsertTaskRaisesQueueFlag(t *testing.T) {
	l := openTestLedger(t)

	if available, _ := l.QueueAvailable(); available {
		t.Fatalf("queue flag set on fresh ledger")
	}

	err := l.Execute(SignedOrigin("alice"), InsertTask(1, "https://example.com", "agent-X"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	available, err := l.QueueAvailable()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available {
		t.Fatalf("queue flag not raised")
	}

	task, found, err := l.Task(1)
	if err != nil || !found {
		t.Fatalf("task not found: %v", err)
	}
	if task.Target != "https://example.com" || task.Header != "agent-X" {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestInsertTaskOverwritesSilently(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Execute(SignedOrigin("alice"), InsertTask(1, "t1", "h1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Execute(SignedOrigin("alice"), InsertTask(1, "t2", "h2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	task, _, err := l.Task(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Target != "t2" || task.Header != "h2" {
		t.Fatalf("second insert did not overwrite: %+v", task)
	}
}

func TestClearTasksLowersFlagKeepsEntries(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Execute(SignedOrigin("alice"), InsertTask(1, "t", "h")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Execute(SignedOrigin("alice"), ClearTasks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if available, _ := l.QueueAvailable(); available {
		t.Fatalf("queue flag still set after clear")
	}
	if _, found, _ := l.Task(1); !found {
		t.Fatalf("clear_tasks deleted the entry")
	}
}

func TestDrainQueueFlag(t *testing.T) {
	l := openTestLedger(t)

	if err := l.Execute(SignedOrigin("alice"), InsertTask(1, "t", "h")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	was, err := l.DrainQueueFlag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !was {
		t.Fatalf("drain returned false with flag set")
	}

	was, err = l.DrainQueueFlag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if was {
		t.Fatalf("flag not cleared by first drain")
	}
}

func TestSignedCallsRequireSignedOrigin(t *testing.T) {
	l := openTestLedger(t)

	calls := []Call{
		InsertTask(1, "t", "h"),
		ClearTasks(),
		SubmitAgentSigned("abc"),
		SubmitNumberSigned(1),
	}
	for _, call := range calls {
		if err := l.Execute(NoneOrigin(), call); !errors.Is(err, ErrBadOrigin) {
			t.Fatalf("%s: got %v, want ErrBadOrigin", call.Kind, err)
		}
	}

	// The unsigned call rejects signed origins.
	if err := l.Execute(SignedOrigin("alice"), SubmitNumberUnsigned(1)); !errors.Is(err, ErrBadOrigin) {
		t.Fatalf("got %v, want ErrBadOrigin", err)
	}
}

func TestAgentOverwrittenUnconditionally(t *testing.T) {
	l := openTestLedger(t)

	for _, agent := range []string{"first", "second"} {
		if err := l.Execute(SignedOrigin("alice"), SubmitAgentSigned(agent)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	agent, err := l.UserAgentOnChain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent != "second" {
		t.Fatalf("got %q, want second", agent)
	}
}

func TestNumberBufferAppendInCallOrder(t *testing.T) {
	l := openTestLedger(t)

	for i := uint64(0); i < 7; i++ {
		if err := l.Execute(NoneOrigin(), SubmitNumberUnsigned(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	numbers, err := l.Numbers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{0, 1, 2, 3, 4, 5, 6}
	if !reflect.DeepEqual(numbers, want) {
		t.Fatalf("got %v, want %v", numbers, want)
	}
}

// Sixteen submissions of 0..15 must leave 10..15 at indices 0..5 and 6..9 at
// indices 6..9: slot index is the submission ordinal mod 10.
func TestNumberBufferWrapsAtTen(t *testing.T) {
	l := openTestLedger(t)

	for i := uint64(0); i < 16; i++ {
		if err := l.Execute(NoneOrigin(), SubmitNumberUnsigned(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	numbers, err := l.Numbers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint64{10, 11, 12, 13, 14, 15, 6, 7, 8, 9}
	if !reflect.DeepEqual(numbers, want) {
		t.Fatalf("got %v, want %v", numbers, want)
	}
}

func TestAverageTruncates(t *testing.T) {
	l := openTestLedger(t)

	if avg, _ := l.Average(); avg != 0 {
		t.Fatalf("empty buffer average is %d, want 0", avg)
	}

	for _, n := range []uint64{1, 2} {
		if err := l.Execute(NoneOrigin(), SubmitNumberUnsigned(n)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	avg, err := l.Average()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg != 1 {
		t.Fatalf("got %d, want truncated average 1", avg)
	}
}

func TestNewNumberEvents(t *testing.T) {
	l := openTestLedger(t)

	var events []NewNumberEvent
	l.Subscribe(func(ev NewNumberEvent) {
		events = append(events, ev)
	})

	if err := l.Execute(SignedOrigin("alice"), SubmitNumberSigned(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Execute(NoneOrigin(), SubmitNumberUnsigned(9)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Account == nil || *events[0].Account != "alice" || events[0].Number != 7 {
		t.Fatalf("unexpected signed event: %+v", events[0])
	}
	if events[1].Account != nil || events[1].Number != 9 {
		t.Fatalf("unexpected unsigned event: %+v", events[1])
	}
}
