package ledger

import "time"

// DefaultProtectionWindow is how long a local edit outranks external
// snapshots when no duration is configured.
const DefaultProtectionWindow = 2 * time.Second

// Outcome describes what the reconciler did with an external snapshot.
type Outcome int

const (
	// OutcomeAccepted replaced the local ledger with the external snapshot.
	OutcomeAccepted Outcome = iota
	// OutcomeIgnored dropped the snapshot because a local mutation was
	// mid-apply. The next external delivery carries the fresher state.
	OutcomeIgnored
	// OutcomeKeptLocal retained the local ledger against an empty external
	// snapshot; the caller should re-push local as the corrected truth.
	OutcomeKeptLocal
	// OutcomeDeferred retained the local ledger against a smaller external
	// snapshot; the caller should re-check once after the window elapses.
	OutcomeDeferred
	// OutcomeMerged key-unioned local and external with local precedence.
	OutcomeMerged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeKeptLocal:
		return "kept_local"
	case OutcomeDeferred:
		return "deferred"
	case OutcomeMerged:
		return "merged"
	}
	return "unknown"
}

// Reconciler arbitrates between local user edits and asynchronously arriving
// external snapshots (save echoes, reloads). The remote store may echo back a
// state that has not yet absorbed the most recent local edit; for a fixed
// window after each local change the local ledger takes precedence so that
// write-after-read race cannot visibly drop data. This is a best-effort,
// time-boxed precedence rule, not general conflict resolution.
type Reconciler struct {
	window    time.Duration
	now       func() time.Time
	lastLocal time.Time
	applying  bool
}

// NewReconciler returns a reconciler with the given protection window.
// Non-positive durations fall back to DefaultProtectionWindow.
func NewReconciler(window time.Duration) *Reconciler {
	if window <= 0 {
		window = DefaultProtectionWindow
	}
	return &Reconciler{window: window, now: time.Now}
}

// Window returns the configured protection window.
func (r *Reconciler) Window() time.Duration {
	return r.window
}

// NoteLocalChange marks now as the start of a fresh protection window.
// Call it after every local add, update or remove.
func (r *Reconciler) NoteLocalChange() {
	r.lastLocal = r.now()
}

// BeginApply and EndApply bracket the application of a local mutation.
// Snapshots arriving in between are ignored outright.
func (r *Reconciler) BeginApply() { r.applying = true }
func (r *Reconciler) EndApply()   { r.applying = false }

// Remaining returns how much of the protection window is left, zero when
// expired or when no local change has been recorded.
func (r *Reconciler) Remaining() time.Duration {
	if r.lastLocal.IsZero() {
		return 0
	}
	left := r.window - r.now().Sub(r.lastLocal)
	if left < 0 {
		return 0
	}
	return left
}

// Reconcile decides the resulting ledger given the current local snapshot
// and a freshly arrived external one.
//
// Outside the protection window the external snapshot wins unconditionally.
// Inside it, local wins: an empty external snapshot is rejected and local is
// re-pushed, a strictly smaller one is deferred for a single re-check, an
// equal-sized one with different ids is merged with local precedence, and
// only a snapshot covering at least everything local holds is accepted.
func (r *Reconciler) Reconcile(local Ledger, external []LineItem) (Ledger, Outcome) {
	if r.applying {
		return local, OutcomeIgnored
	}
	if r.Remaining() == 0 {
		return local.Replace(external), OutcomeAccepted
	}

	switch {
	case len(external) == 0 && local.Len() > 0:
		return local, OutcomeKeptLocal
	case len(external) < local.Len():
		return local, OutcomeDeferred
	case len(external) == local.Len() && !local.SameKeys(external):
		return local.Merge(external), OutcomeMerged
	}
	return local.Replace(external), OutcomeAccepted
}
