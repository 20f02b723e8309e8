package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mpancino/myassetplace/internal/ledger"
)

// Session owns the editing state for one asset: its ledger, form editor and
// reconciler, plus the persistence and notification ports. A mutex serializes
// access; handlers for the same asset may arrive on concurrent requests.
//
// Mutations are optimistic: the new snapshot is visible immediately and the
// save runs on its own goroutine. A failed save never rolls local state back;
// it is reported through the notifier and the store catches up on the next
// save or refresh.
type Session struct {
	mu      sync.Mutex
	assetID string

	ledger ledger.Ledger
	editor *ledger.Editor
	rec    *ledger.Reconciler

	saver    ledger.Saver
	loader   ledger.Loader
	notifier ledger.Notifier
	log      zerolog.Logger

	recheck  *time.Timer
	repushed bool
}

// Config carries the per-session knobs.
type Config struct {
	ProtectionWindow time.Duration
	Multipliers      ledger.Multipliers
}

// New builds a session seeded with the given persisted items.
func New(assetID string, items []ledger.LineItem, cfg Config, saver ledger.Saver, loader ledger.Loader, notifier ledger.Notifier, log zerolog.Logger) *Session {
	base := ledger.New(cfg.Multipliers)
	return &Session{
		assetID:  assetID,
		ledger:   base.Replace(items),
		editor:   ledger.NewEditor(),
		rec:      ledger.NewReconciler(cfg.ProtectionWindow),
		saver:    saver,
		loader:   loader,
		notifier: notifier,
		log:      log.With().Str("asset_id", assetID).Logger(),
	}
}

// BeginAdd opens the staging form for a new item.
func (s *Session) BeginAdd() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.BeginAdd()
}

// BeginEdit opens the staging form pre-filled from an existing item.
func (s *Session) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.BeginEdit(s.ledger, id)
}

// SetField stages one form field value.
func (s *Session) SetField(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SetField(key, value)
}

// Cancel discards staged values.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Cancel()
}

// Commit applies the staged add or edit to the ledger, keeps the snapshot
// locally and dispatches the save in the background.
func (s *Session) Commit(ctx context.Context) (ledger.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.BeginApply()
	next, item, err := s.editor.Commit(s.ledger)
	if err != nil {
		s.rec.EndApply()
		return ledger.LineItem{}, err
	}
	s.ledger = next
	s.rec.NoteLocalChange()
	s.repushed = false
	s.rec.EndApply()

	s.dispatchSave(next.Items())
	return item, nil
}

// RemoveItem deletes an item directly (no staging step) and persists.
func (s *Session) RemoveItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.BeginApply()
	next, err := s.ledger.Remove(id)
	if err != nil {
		s.rec.EndApply()
		return err
	}
	s.ledger = next
	s.rec.NoteLocalChange()
	s.repushed = false
	s.rec.EndApply()

	s.dispatchSave(next.Items())
	return nil
}

// Items returns the current snapshot's line items.
func (s *Session) Items() []ledger.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Items()
}

// Total returns the current snapshot's aggregate annual total.
func (s *Session) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Total()
}

// Summarize projects the aggregate figures from the current snapshot.
func (s *Session) Summarize(externalIncome *decimal.Decimal) ledger.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Summarize(s.ledger, externalIncome)
}

// EditorMode reports the form state machine's current mode.
func (s *Session) EditorMode() ledger.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Mode()
}

// Refresh loads the persisted snapshot and reconciles it against local state.
func (s *Session) Refresh(ctx context.Context) (ledger.Outcome, error) {
	items, err := s.loader.Load(ctx, s.assetID)
	if err != nil {
		return 0, err
	}
	return s.ApplyExternal(items), nil
}

// ApplyExternal feeds an external snapshot (save echo or reload) through the
// reconciler and acts on the outcome.
func (s *Session) ApplyExternal(items []ledger.LineItem) ledger.Outcome {
	s.mu.Lock()

	next, outcome := s.rec.Reconcile(s.ledger, items)
	s.ledger = next

	switch outcome {
	case ledger.OutcomeKeptLocal:
		// The store echoed an empty state while local has items: re-push
		// local as the corrected truth rather than silently dropping data.
		// At most one re-push per local change, or an always-empty echo
		// would ping-pong saves forever.
		if !s.repushed {
			s.repushed = true
			snapshot := s.ledger.Items()
			s.mu.Unlock()
			s.log.Warn().Msg("store echoed empty snapshot, re-pushing local ledger")
			s.dispatchSave(snapshot)
			return outcome
		}
	case ledger.OutcomeDeferred:
		s.scheduleRecheck()
	}
	s.mu.Unlock()

	s.log.Debug().Str("outcome", outcome.String()).Int("items", len(items)).Msg("reconciled external snapshot")
	return outcome
}

// scheduleRecheck arms a single re-check for when the protection window has
// elapsed. Called with s.mu held. Repeated deferrals reuse the armed timer so
// the session never polls.
func (s *Session) scheduleRecheck() {
	if s.recheck != nil {
		return
	}
	delay := s.rec.Remaining() + 50*time.Millisecond
	s.recheck = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.recheck = nil
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.log.Error().Err(err).Msg("deferred reconcile re-check failed")
		}
	})
}

// Close stops any pending re-check timer.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recheck != nil {
		s.recheck.Stop()
		s.recheck = nil
	}
}

func (s *Session) dispatchSave(items []ledger.LineItem) {
	go func() {
		echo, err := s.saver.Save(context.Background(), s.assetID, items)
		if err != nil {
			s.log.Error().Err(err).Msg("save failed, local ledger kept")
			s.notifier.Notify(ledger.NotifyError, "Saving changes failed. Your edits are kept locally.")
			return
		}
		s.notifier.Notify(ledger.NotifySuccess, "Changes saved.")
		s.ApplyExternal(echo)
	}()
}
