package proofs

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/logging"
	"github.com/dmitrijs2005/proofpay/internal/server/models"
	"github.com/dmitrijs2005/proofpay/internal/server/sessions"
)

// timeNow is swapped out in tests.
var timeNow = time.Now

// Result identifies a generated proof for the verifier flow: the request id
// the verifier queries by, and the blinding salt that was committed to. Both
// are hex strings.
type Result struct {
	RequestID string `json:"requestId"`
	Salt      string `json:"salt"`
}

// Service builds proving requests from session identity and payslip data.
type Service struct {
	prover Prover
	logger logging.Logger
}

// NewService constructs a proof Service.
func NewService(p Prover, logger logging.Logger) *Service {
	return &Service{
		prover: p,
		logger: logger.With("module", "proofs"),
	}
}

// cents converts a monetary amount to whole cents.
func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// proofDate returns t as a YYYYMMDD number.
func proofDate(t time.Time) int64 {
	n, _ := strconv.ParseInt(t.Format("20060102"), 10, 64)
	return n
}

// GenerateVerificationProof assembles the witness facts for the given session
// and payslip and submits them to the prover. The session must carry a
// verified identity; the net pay and the identity's date of birth become
// private witnesses, the threshold amount stays public.
func (s *Service) GenerateVerificationProof(ctx context.Context, sess *sessions.Session, payslip *models.PayslipData, amountToProve float64) (*Result, error) {
	if sess.IDDOB == "" {
		return nil, fmt.Errorf("%w: identity not verified for this session", common.ErrorValidation)
	}

	dob := []byte(sess.IDDOB)
	if len(dob) > dobLength {
		return nil, fmt.Errorf("%w: date of birth exceeds %d bytes", common.ErrorValidation, dobLength)
	}
	padded := make([]byte, dobLength)
	copy(padded, dob)

	coinPublicKey, err := sess.Wallet.CoinPublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading wallet public key: %w", err)
	}

	nameHash := sha256.Sum256([]byte(payslip.EmployeeName))
	randomness := common.GenerateRandByteArray(randomnessLength)
	requestID := common.GenerateRandByteArray(randomnessLength)

	req := &Request{
		Facts: PrivateFacts{
			NameHash:      nameHash[:],
			DOB:           padded,
			NetPayCents:   cents(payslip.NetPay),
			Randomness:    randomness,
			CoinPublicKey: coinPublicKey,
		},
		AmountCents: cents(amountToProve),
		ProofDate:   proofDate(timeNow()),
		RequestID:   requestID,
	}

	if err := s.prover.Prove(ctx, req); err != nil {
		return nil, err
	}

	result := &Result{
		RequestID: fmt.Sprintf("%x", requestID),
		Salt:      fmt.Sprintf("%x", randomness),
	}

	s.logger.Info(ctx, "proof generated", "request_id", result.RequestID)
	return result, nil
}
