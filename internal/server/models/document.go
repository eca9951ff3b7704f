package models

// PayslipData holds the fields extracted from an uploaded payslip document.
// Zero values mean the extractor could not find the field.
type PayslipData struct {
	EmployeeName string  `json:"employeeName"`
	EmployerID   string  `json:"employerId"`
	GrossPay     float64 `json:"grossPay"`
	NetPay       float64 `json:"netPay"`
	PayslipDate  string  `json:"payslipDate"` // YYYY-MM-DD
}

// IdentityData holds the fields extracted from an uploaded ID document.
type IdentityData struct {
	Name           string `json:"name"`
	DOB            string `json:"dob"` // YYYY-MM-DD
	DocumentNumber string `json:"documentNumber"`
	ExpiryDate     string `json:"expiryDate"`
	Nationality    string `json:"nationality"`
}

// PayslipValidation is the outcome of checking an extracted payslip against
// the requested income threshold and the freshness rule.
type PayslipValidation struct {
	GrossPay               float64 `json:"grossPay"`
	RequiredAmount         float64 `json:"requiredAmount"`
	MeetsIncomeRequirement bool    `json:"meetsIncomeRequirement"`
	DaysSincePayslip       int     `json:"daysSincePayslip"`
	MeetsFreshnessRule     bool    `json:"meetsFreshnessRule"`
	Reason                 string  `json:"reason"`
}
