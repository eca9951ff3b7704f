// Package sessions tracks live authenticated sessions and owns the cleanup
// of their wallet resources.
package sessions

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/wallet"
)

// Session is one live authenticated user: the decrypted account identity and
// its open wallet handle. IDName and IDDOB are filled by the ID verification
// step and consumed by proof generation; they are never persisted.
type Session struct {
	UserID string
	Email  string
	Wallet wallet.Handle
	IDName string
	IDDOB  string
}

// Registry is the process-wide map from session identifier to live session.
// One instance is created at startup and passed to every consumer; it is
// torn down with Cleanup on shutdown.
//
// Access is safe under concurrent insert, remove, and lookup from independent
// request handlers. Entries for different session identifiers are fully
// independent.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   logging.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry(logger logging.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger.With("module", "sessions"),
	}
}

// Register inserts a session under sessionID. If an entry already exists for
// the same identifier its wallet is closed before being replaced, so a
// double login on one session cannot leak a wallet resource.
func (r *Registry) Register(ctx context.Context, sessionID string, s *Session) {
	r.mu.Lock()
	prev := r.sessions[sessionID]
	r.sessions[sessionID] = s
	r.mu.Unlock()

	if prev != nil && prev.Wallet != nil {
		if err := prev.Wallet.Close(ctx); err != nil {
			r.logger.Warn(ctx, "closing replaced session wallet", "error", err.Error())
		}
	}
}

// Remove evicts the session and closes its wallet. The entry is removed even
// when closing fails; the close error is returned for logging.
func (r *Registry) Remove(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if !ok || s.Wallet == nil {
		return nil
	}
	return s.Wallet.Close(ctx)
}

// Get returns a snapshot of the session registered under sessionID. Callers
// get a copy, not the stored entry, so reads of the identity fields cannot
// race a concurrent SetIdentity.
func (r *Registry) Get(sessionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// IsLoggedIn reports whether a session is live under sessionID.
func (r *Registry) IsLoggedIn(sessionID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[sessionID]
	return ok
}

// SetIdentity stores the verified identity fields on a live session.
func (r *Registry) SetIdentity(sessionID, name, dob string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return common.ErrorNotFound
	}
	s.IDName = name
	s.IDDOB = dob
	return nil
}

// Cleanup closes every live wallet and clears the map. Closing is
// best-effort: one failing wallet does not stop the rest from being closed.
// Called once on graceful shutdown.
func (r *Registry) Cleanup(ctx context.Context) {
	r.mu.Lock()
	evicted := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for sessionID, s := range evicted {
		if s.Wallet == nil {
			continue
		}
		if err := s.Wallet.Close(ctx); err != nil {
			r.logger.Warn(ctx, "closing session wallet on shutdown", "session_id", sessionID, "error", err.Error())
		}
	}
	r.logger.Info(ctx, "session registry cleared", "sessions", len(evicted))
}
