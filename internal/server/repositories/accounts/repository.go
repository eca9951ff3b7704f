package accounts

import (
	"context"

	"github.com/dmitrijs2005/proofpay/internal/server/models"
)

// Repository is the durable account store: one record per normalized email.
type Repository interface {
	// Create persists a new account. Returns common.ErrorAlreadyExists when
	// the email uniqueness constraint is violated.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByEmail returns the stored account or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// IsRegistered reports whether an account exists for the email.
	IsRegistered(ctx context.Context, email string) (bool, error)
}
