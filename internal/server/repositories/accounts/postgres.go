package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/cryptox"
	"github.com/dmitrijs2005/proofpay/internal/dbx"
	"github.com/dmitrijs2005/proofpay/internal/server/models"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func marshalEnvelope(env *cryptox.Envelope) ([]byte, error) {
	if env == nil {
		return nil, fmt.Errorf("nil envelope")
	}
	return json.Marshal(env)
}

func unmarshalEnvelope(data []byte) (*cryptox.Envelope, error) {
	env := &cryptox.Envelope{}
	if err := json.Unmarshal(data, env); err != nil {
		return nil, err
	}
	return env, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	seed, err := marshalEnvelope(account.EncryptedSeed)
	if err != nil {
		return nil, fmt.Errorf("encoding seed envelope: %w", err)
	}
	state, err := marshalEnvelope(account.EncryptedState)
	if err != nil {
		return nil, fmt.Errorf("encoding state envelope: %w", err)
	}
	secretKey, err := marshalEnvelope(account.EncryptedSecretKey)
	if err != nil {
		return nil, fmt.Errorf("encoding secret key envelope: %w", err)
	}

	query :=
		`INSERT INTO accounts (email, hashed_password, encrypted_seed, encrypted_state, encrypted_secret_key)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		account.Email, account.HashedPassword, seed, state, secretKey).
		Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, hashed_password, encrypted_seed, encrypted_state, encrypted_secret_key, created_at
		 FROM accounts
		 WHERE email = $1
		 `

	account := &models.Account{}
	var seed, state, secretKey []byte

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.HashedPassword,
		&seed, &state, &secretKey, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if account.EncryptedSeed, err = unmarshalEnvelope(seed); err != nil {
		return nil, fmt.Errorf("decoding seed envelope: %w", err)
	}
	if account.EncryptedState, err = unmarshalEnvelope(state); err != nil {
		return nil, fmt.Errorf("decoding state envelope: %w", err)
	}
	if account.EncryptedSecretKey, err = unmarshalEnvelope(secretKey); err != nil {
		return nil, fmt.Errorf("decoding secret key envelope: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) IsRegistered(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
