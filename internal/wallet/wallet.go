// Package wallet defines the narrow capability interface over the external
// wallet engine and an HTTP client implementation against the wallet daemon.
//
// The engine itself (key derivation, chain sync, proving) is out of scope;
// this package only manages the lifecycle of wallet resources: create,
// restore, start, serialize, close.
package wallet

import "context"

// Handle is one unlocked wallet resource. A handle is exclusively owned:
// by the signup flow until it is closed, or by exactly one session registry
// entry while a session is live. Callers must close it on every exit path.
type Handle interface {
	// SerializeState snapshots the wallet state for storage at rest.
	SerializeState(ctx context.Context) (string, error)

	// Start begins chain synchronization for a restored wallet.
	Start(ctx context.Context) error

	// CoinPublicKey returns the wallet's coin public key from the first
	// state emission.
	CoinPublicKey(ctx context.Context) (string, error)

	// Close releases the wallet resource. Closing an already closed handle
	// is a no-op.
	Close(ctx context.Context) error
}

// Factory creates and restores wallet resources.
type Factory interface {
	// Create builds a fresh wallet and returns its handle together with the
	// seed, the wallet's root secret. The seed is returned exactly once.
	Create(ctx context.Context) (Handle, string, error)

	// Restore rebuilds a wallet from a seed and a serialized state snapshot.
	Restore(ctx context.Context, seed, state string) (Handle, error)
}
