package proofs

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/proofpay/internal/common"
	"github.com/dmitrijs2005/proofpay/internal/server/models"
)

// minPayslipAgeDays is the minimum age of a payslip accepted for proof
// generation. A fresher payslip could be fabricated right before the check.
const minPayslipAgeDays = 30

// ValidatePayslip checks an extracted payslip against the requested income
// threshold and the freshness rule. The returned struct always describes the
// outcome; an error means the payslip date could not be parsed.
func ValidatePayslip(data *models.PayslipData, amountToProve float64, now time.Time) (*models.PayslipValidation, error) {
	payslipDate, err := time.Parse("2006-01-02", data.PayslipDate)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable payslip date %q", common.ErrorValidation, data.PayslipDate)
	}

	days := int(now.Sub(payslipDate).Hours() / 24)
	meetsIncome := data.GrossPay >= amountToProve
	meetsFreshness := days >= minPayslipAgeDays

	v := &models.PayslipValidation{
		GrossPay:               data.GrossPay,
		RequiredAmount:         amountToProve,
		MeetsIncomeRequirement: meetsIncome,
		DaysSincePayslip:       days,
		MeetsFreshnessRule:     meetsFreshness,
	}

	switch {
	case !meetsFreshness:
		v.Reason = fmt.Sprintf("payslip is only %d days old (need %d+)", days, minPayslipAgeDays)
	case !meetsIncome:
		v.Reason = fmt.Sprintf("gross pay %.2f is below %.2f", data.GrossPay, amountToProve)
	default:
		v.Reason = "all requirements met"
	}
	return v, nil
}
