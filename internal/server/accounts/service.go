// Package accounts implements account creation and restoration on top of the
// layered key-wrapping scheme.
//
// At signup the wallet seed and serialized state are sealed under a random
// secret key, and the secret key is sealed under the user's password. The
// extra layer keeps the wallet secrets under a high-entropy key: a password
// change only requires re-wrapping the secret key, never the seed itself.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/cryptox"
	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/server/auth"
	"github.com/dmitrijs2005/proofpay/internal/server/models"
	"github.com/dmitrijs2005/proofpay/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/proofpay/internal/server/sessions"
	"github.com/dmitrijs2005/proofpay/internal/wallet"
)

// secretKeyLength is the number of random bytes in the intermediate wrapping
// key; it travels as a hex string twice that long.
const secretKeyLength = 32

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = "@$!%*?&"

// Service orchestrates signup, login, and logout over the account store,
// the wallet engine, and the session registry.
type Service struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	factory     wallet.Factory
	registry    *sessions.Registry
	logger      logging.Logger
}

// NewService constructs an account Service.
func NewService(db *sql.DB, m repomanager.RepositoryManager, f wallet.Factory, r *sessions.Registry, logger logging.Logger) *Service {
	return &Service{
		db:          db,
		repomanager: m,
		factory:     f,
		registry:    r,
		logger:      logger.With("module", "accounts"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// isValidPassword enforces the registration policy: at least 8 characters,
// one uppercase, one lowercase, one digit, one special from the fixed set,
// and no characters outside that alphabet.
func isValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		default:
			return false
		}
	}
	return upper && lower && digit && special
}

// SignUp registers a new account. A wallet is created to obtain the seed and
// initial state, its secrets are wrapped and persisted, and the wallet is
// closed before returning on every path: signup never leaves a session open.
func (s *Service) SignUp(ctx context.Context, email, password, confirmPassword string) error {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)
	confirmPassword = strings.TrimSpace(confirmPassword)

	if !isValidEmail(email) {
		return fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}
	if !isValidPassword(password) {
		return fmt.Errorf("%w: password must be at least 8 characters and contain uppercase, lowercase, number, and special character (%s)",
			common.ErrorValidation, passwordSpecials)
	}
	if password != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}

	repo := s.repomanager.Accounts(s.db)

	registered, err := repo.IsRegistered(ctx, email)
	if err != nil {
		return fmt.Errorf("checking registration: %w", err)
	}
	if registered {
		return common.ErrorAlreadyExists
	}

	handle, seed, err := s.factory.Create(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := handle.Close(ctx); cerr != nil {
			s.logger.Warn(ctx, "closing signup wallet", "error", cerr.Error())
		}
	}()

	state, err := handle.SerializeState(ctx)
	if err != nil {
		return err
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	secretKey, err := common.MakeRandHexString(secretKeyLength)
	if err != nil {
		return fmt.Errorf("generating secret key: %w", err)
	}

	encryptedSeed, err := cryptox.Encrypt(seed, secretKey)
	if err != nil {
		return fmt.Errorf("sealing seed: %w", err)
	}
	encryptedState, err := cryptox.Encrypt(state, secretKey)
	if err != nil {
		return fmt.Errorf("sealing state: %w", err)
	}
	encryptedSecretKey, err := cryptox.Encrypt(secretKey, password)
	if err != nil {
		return fmt.Errorf("sealing secret key: %w", err)
	}

	account := &models.Account{
		Email:              email,
		HashedPassword:     hashedPassword,
		EncryptedSeed:      encryptedSeed,
		EncryptedState:     encryptedState,
		EncryptedSecretKey: encryptedSecretKey,
	}

	if _, err := repo.Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("persisting account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "email", email)
	return nil
}

// Login verifies the credentials, unwraps the wallet secrets, restores and
// starts the wallet, and registers the session. A wrong password and a
// failed envelope decryption surface as the same error.
func (s *Service) Login(ctx context.Context, email, password, sessionID string) (*sessions.Session, error) {
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if !isValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email format", common.ErrorValidation)
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("fetching account: %w", err)
	}

	if !auth.CheckPassword(password, account.HashedPassword) {
		return nil, common.ErrorInvalidCredentials
	}

	secretKey, err := cryptox.Decrypt(account.EncryptedSecretKey, password)
	if err != nil {
		return nil, common.ErrorInvalidCredentials
	}
	seed, err := cryptox.Decrypt(account.EncryptedSeed, secretKey)
	if err != nil {
		return nil, common.ErrorInvalidCredentials
	}
	state, err := cryptox.Decrypt(account.EncryptedState, secretKey)
	if err != nil {
		return nil, common.ErrorInvalidCredentials
	}

	handle, err := s.factory.Restore(ctx, seed, state)
	if err != nil {
		return nil, err
	}

	if err := handle.Start(ctx); err != nil {
		if cerr := handle.Close(ctx); cerr != nil {
			s.logger.Warn(ctx, "closing wallet after failed start", "error", cerr.Error())
		}
		return nil, err
	}

	session := &sessions.Session{
		UserID: account.ID,
		Email:  account.Email,
		Wallet: handle,
	}
	s.registry.Register(ctx, sessionID, session)

	s.logger.Info(ctx, "login", "email", email, "session_id", sessionID)
	return session, nil
}

// Logout closes the session's wallet and evicts it from the registry.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.registry.Remove(ctx, sessionID); err != nil {
		s.logger.Warn(ctx, "closing wallet on logout", "session_id", sessionID, "error", err.Error())
		return err
	}
	return nil
}
