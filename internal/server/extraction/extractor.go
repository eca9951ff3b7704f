// Package extraction turns uploaded documents into structured fields using
// an external document-AI service. The caller treats results as opaque
// already-validated values; nothing here is persisted.
package extraction

import (
	"context"

	"github.com/dmitrijs2005/proofpay/internal/server/models"
)

// Extractor extracts structured fields from an uploaded document.
type Extractor interface {
	// ExtractPayslip reads income fields from a payslip document.
	ExtractPayslip(ctx context.Context, doc []byte, mimeType string) (*models.PayslipData, error)

	// ExtractIdentity reads identity fields from an ID document.
	ExtractIdentity(ctx context.Context, doc []byte, mimeType string) (*models.IdentityData, error)
}
