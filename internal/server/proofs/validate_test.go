package proofs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/server/models"
)

func TestValidatePayslip(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		payslipDate    string
		grossPay       float64
		amount         float64
		wantIncome     bool
		wantFresh      bool
		wantDays       int
		reasonContains string
	}{
		{"both met", "2026-07-01", 3500, 2000, true, true, 60, "all requirements met"},
		{"exactly 30 days", "2026-07-31", 3500, 2000, true, true, 30, "all requirements met"},
		{"too fresh", "2026-08-15", 3500, 2000, true, false, 15, "only 15 days old"},
		{"income too low", "2026-07-01", 1500, 2000, false, true, 60, "below"},
		{"gross equals amount", "2026-07-01", 2000, 2000, true, true, 60, "all requirements met"},
		{"both failing reports freshness", "2026-08-25", 1500, 2000, false, false, 5, "days old"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ValidatePayslip(&models.PayslipData{
				GrossPay:    tc.grossPay,
				PayslipDate: tc.payslipDate,
			}, tc.amount, now)
			require.NoError(t, err)

			assert.Equal(t, tc.wantIncome, v.MeetsIncomeRequirement)
			assert.Equal(t, tc.wantFresh, v.MeetsFreshnessRule)
			assert.Equal(t, tc.wantDays, v.DaysSincePayslip)
			assert.Contains(t, v.Reason, tc.reasonContains)
		})
	}
}

func TestValidatePayslip_BadDate(t *testing.T) {
	_, err := ValidatePayslip(&models.PayslipData{PayslipDate: "July 2026"}, 2000, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrorValidation))
}
