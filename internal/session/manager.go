package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mpancino/myassetplace/internal/ledger"
)

// Manager hands out one Session per asset, creating it lazily from the
// persisted snapshot on first use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg      Config
	saver    ledger.Saver
	loader   ledger.Loader
	notifier ledger.Notifier
	log      zerolog.Logger
}

// NewManager wires the ports shared by every session.
func NewManager(cfg Config, saver ledger.Saver, loader ledger.Loader, notifier ledger.Notifier, log zerolog.Logger) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		cfg:      cfg,
		saver:    saver,
		loader:   loader,
		notifier: notifier,
		log:      log,
	}
}

// Get returns the session for an asset, loading its items on first access.
func (m *Manager) Get(ctx context.Context, assetID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[assetID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the lock; two racing loaders are harmless, the second
	// result is discarded below.
	items, err := m.loader.Load(ctx, assetID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[assetID]; ok {
		return s, nil
	}
	s := New(assetID, items, m.cfg, m.saver, m.loader, m.notifier, m.log)
	m.sessions[assetID] = s
	return s, nil
}

// Drop discards the session for an asset, e.g. when the asset is deleted.
func (m *Manager) Drop(assetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[assetID]; ok {
		s.Close()
		delete(m.sessions, assetID)
	}
}
