package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// fakeClock lets tests move through the protection window deterministically.
type fakeClock struct {
	at time.Time
}

func (f *fakeClock) now() time.Time          { return f.at }
func (f *fakeClock) advance(d time.Duration) { f.at = f.at.Add(d) }

func newTestReconciler(window time.Duration) (*Reconciler, *fakeClock) {
	clock := &fakeClock{at: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := NewReconciler(window)
	r.now = clock.now
	return r, clock
}

func threeItemLedger(t *testing.T) Ledger {
	t.Helper()
	l := New(nil)
	l, _ = mustAdd(t, l, Candidate{CategoryID: "rates", Amount: "100", Frequency: "monthly"})
	l, _ = mustAdd(t, l, Candidate{CategoryID: "water", Amount: "80", Frequency: "quarterly"})
	l, _ = mustAdd(t, l, Candidate{CategoryID: "insurance", Amount: "40", Frequency: "monthly"})
	return l
}

func extItems(n int) []LineItem {
	out := make([]LineItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, LineItem{
			ID:         string(rune('a' + i)),
			CategoryID: "ext",
			Amount:     decimal.NewFromInt(10),
			Frequency:  FreqMonthly,
		})
	}
	return out
}

func TestReconcile_DefersOnPartialEchoInsideWindow(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	local := threeItemLedger(t)
	r.NoteLocalChange()

	got, outcome := r.Reconcile(local, extItems(1))
	if outcome != OutcomeDeferred {
		t.Fatalf("outcome = %s, want deferred", outcome)
	}
	if got.Len() != 3 {
		t.Errorf("Len = %d, want 3 (local preserved)", got.Len())
	}
}

func TestReconcile_AcceptsAfterWindow(t *testing.T) {
	r, clock := newTestReconciler(2 * time.Second)
	local := threeItemLedger(t)
	r.NoteLocalChange()
	clock.advance(2 * time.Second)

	got, outcome := r.Reconcile(local, extItems(1))
	if outcome != OutcomeAccepted {
		t.Fatalf("outcome = %s, want accepted", outcome)
	}
	if got.Len() != 1 {
		t.Errorf("Len = %d, want 1 (external accepted)", got.Len())
	}
}

func TestReconcile_AcceptsWithNoLocalChange(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	local := threeItemLedger(t)

	got, outcome := r.Reconcile(local, extItems(1))
	if outcome != OutcomeAccepted {
		t.Fatalf("outcome = %s, want accepted", outcome)
	}
	if got.Len() != 1 {
		t.Errorf("Len = %d, want 1", got.Len())
	}
}

func TestReconcile_KeepsLocalAgainstEmptyEcho(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	local := threeItemLedger(t)
	r.NoteLocalChange()

	got, outcome := r.Reconcile(local, nil)
	if outcome != OutcomeKeptLocal {
		t.Fatalf("outcome = %s, want kept_local", outcome)
	}
	if got.Len() != 3 {
		t.Errorf("Len = %d, want 3", got.Len())
	}
}

func TestReconcile_MergesEqualCountDifferentKeys(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	l := New(nil)
	l, local := mustAdd(t, l, Candidate{CategoryID: "rates", Amount: "500", Frequency: "monthly"})
	r.NoteLocalChange()

	external := []LineItem{{
		ID:         "ext-1",
		CategoryID: "water",
		Amount:     decimal.NewFromInt(80),
		Frequency:  FreqQuarterly,
	}}

	got, outcome := r.Reconcile(l, external)
	if outcome != OutcomeMerged {
		t.Fatalf("outcome = %s, want merged", outcome)
	}
	if got.Len() != 2 {
		t.Errorf("Len = %d, want 2 (key union)", got.Len())
	}
	if _, ok := got.Get(local.ID); !ok {
		t.Error("local item lost in merge")
	}
	if _, ok := got.Get("ext-1"); !ok {
		t.Error("external item lost in merge")
	}
}

func TestReconcile_AcceptsSameKeysInsideWindow(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	l := New(nil)
	l, local := mustAdd(t, l, Candidate{CategoryID: "rates", Amount: "500", Frequency: "monthly"})
	r.NoteLocalChange()

	// Same id set: the echo has absorbed the local edit, take it.
	external := []LineItem{{
		ID:         local.ID,
		CategoryID: "rates",
		Amount:     decimal.NewFromInt(500),
		Frequency:  FreqMonthly,
	}}

	_, outcome := r.Reconcile(l, external)
	if outcome != OutcomeAccepted {
		t.Errorf("outcome = %s, want accepted", outcome)
	}
}

func TestReconcile_AcceptsLargerSnapshotInsideWindow(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	l := New(nil)
	l, _ = mustAdd(t, l, Candidate{CategoryID: "rates", Amount: "500", Frequency: "monthly"})
	r.NoteLocalChange()

	got, outcome := r.Reconcile(l, extItems(3))
	if outcome != OutcomeAccepted {
		t.Fatalf("outcome = %s, want accepted", outcome)
	}
	if got.Len() != 3 {
		t.Errorf("Len = %d, want 3", got.Len())
	}
}

func TestReconcile_IgnoredWhileApplying(t *testing.T) {
	r, _ := newTestReconciler(2 * time.Second)
	local := threeItemLedger(t)

	r.BeginApply()
	got, outcome := r.Reconcile(local, extItems(5))
	if outcome != OutcomeIgnored {
		t.Fatalf("outcome = %s, want ignored", outcome)
	}
	if got.Len() != 3 {
		t.Errorf("Len = %d, want 3", got.Len())
	}

	r.EndApply()
	_, outcome = r.Reconcile(local, extItems(5))
	if outcome != OutcomeAccepted {
		t.Errorf("outcome after EndApply = %s, want accepted", outcome)
	}
}

func TestReconciler_Remaining(t *testing.T) {
	r, clock := newTestReconciler(2 * time.Second)

	if r.Remaining() != 0 {
		t.Errorf("Remaining with no local change = %s, want 0", r.Remaining())
	}

	r.NoteLocalChange()
	clock.advance(500 * time.Millisecond)
	if got := r.Remaining(); got != 1500*time.Millisecond {
		t.Errorf("Remaining = %s, want 1.5s", got)
	}

	clock.advance(3 * time.Second)
	if got := r.Remaining(); got != 0 {
		t.Errorf("Remaining after expiry = %s, want 0", got)
	}
}

func TestNewReconciler_DefaultWindow(t *testing.T) {
	r := NewReconciler(0)
	if r.Window() != DefaultProtectionWindow {
		t.Errorf("Window = %s, want %s", r.Window(), DefaultProtectionWindow)
	}
}
