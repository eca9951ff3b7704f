// Package models contains server-side data structures shared by
// repositories, services, and the HTTP layer.
package models

import (
	"time"

	"github.com/dmitrijs2005/proofpay/internal/cryptox"
)

// Account is one registered user at rest: a bcrypt password hash and the
// three envelopes of the two-layer wrapping scheme. The seed and wallet
// state are sealed under a random secret key; the secret key is sealed
// under the user's password. Accounts are created once and never mutated.
type Account struct {
	ID                 string
	Email              string
	HashedPassword     string
	EncryptedSeed      *cryptox.Envelope
	EncryptedState     *cryptox.Envelope
	EncryptedSecretKey *cryptox.Envelope
	CreatedAt          time.Time
}
