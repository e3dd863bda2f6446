// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package pool

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Greenetwork/offchain-worker/internal/ledger"
)

func openTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestValidateUnsignedAcceptsOnlySubmitNumber(t *testing.T) {
	rejected := []ledger.Call{
		ledger.InsertTask(1, "t", "h"),
		ledger.ClearTasks(),
		ledger.SubmitAgentSigned("abc"),
		ledger.SubmitNumberSigned(1),
	}
	for _, call := range rejected {
		if _, err := ValidateUnsigned(call, 50); !errors.Is(err, ErrInvalidCall) {
			t.Fatalf("%s: got %v, want ErrInvalidCall", call.Kind, err)
		}
	}

	valid, err := ValidateUnsigned(ledger.SubmitNumberUnsigned(42), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid.Priority != 50 {
		t.Fatalf("priority %d, want 50", valid.Priority)
	}
	if valid.Longevity != 3 {
		t.Fatalf("longevity %d, want 3", valid.Longevity)
	}
	if !valid.Propagate {
		t.Fatalf("propagate false, want true")
	}
	if len(valid.Provides) != 1 || valid.Provides[0] != TagPrefix+"/submit_number_unsigned" {
		t.Fatalf("unexpected provides tags: %v", valid.Provides)
	}
}

func TestSubmitUnsignedRejectsOtherCalls(t *testing.T) {
	p := New(openTestLedger(t), 50)

	if err := p.SubmitUnsigned(ledger.SubmitNumberSigned(1)); !errors.Is(err, ErrInvalidCall) {
		t.Fatalf("got %v, want ErrInvalidCall", err)
	}
	if p.Len() != 0 {
		t.Fatalf("rejected call entered the pool")
	}
}

func TestSubmitUnsignedDeduplicatesByTag(t *testing.T) {
	l := openTestLedger(t)
	p := New(l, 50)

	for i := 0; i < 3; i++ {
		if err := p.SubmitUnsigned(ledger.SubmitNumberUnsigned(42)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if p.Len() != 1 {
		t.Fatalf("got %d pending, want 1 after dedup", p.Len())
	}

	p.Drain(1)

	numbers, err := l.Numbers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != 42 {
		t.Fatalf("got %v, want [42]", numbers)
	}
}

func TestDrainExecutesSignedSubmissions(t *testing.T) {
	l := openTestLedger(t)
	p := New(l, 50)

	if err := p.SubmitSigned("alice", ledger.SubmitAgentSigned("abc")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Fire-and-forget: nothing on chain until the next block drains the pool.
	if agent, _ := l.UserAgentOnChain(); agent != "" {
		t.Fatalf("agent visible before drain: %q", agent)
	}

	p.Drain(1)

	agent, err := l.UserAgentOnChain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent != "abc" {
		t.Fatalf("got %q, want abc", agent)
	}
	if p.Len() != 0 {
		t.Fatalf("pool not empty after drain")
	}
}

func TestExpiredUnsignedSubmissionDropped(t *testing.T) {
	l := openTestLedger(t)
	p := New(l, 50)

	// Pool last saw block 5.
	p.Drain(5)

	if err := p.SubmitUnsigned(ledger.SubmitNumberUnsigned(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Valid until block 8, drained at block 9: dropped without execution.
	p.Drain(9)

	numbers, err := l.Numbers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(numbers) != 0 {
		t.Fatalf("expired submission executed: %v", numbers)
	}
}

func TestDedupTagClearedAfterDrain(t *testing.T) {
	l := openTestLedger(t)
	p := New(l, 50)

	if err := p.SubmitUnsigned(ledger.SubmitNumberUnsigned(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Drain(1)

	if err := p.SubmitUnsigned(ledger.SubmitNumberUnsigned(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Drain(2)

	numbers, err := l.Numbers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(numbers) != 2 {
		t.Fatalf("got %v, want two accepted submissions", numbers)
	}
}
