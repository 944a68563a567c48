// internal/workers/credit/calculate-dti/models.go
package calculatedti

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID          string                       `json:"applicationId"`
	MonthlyIncome          float64                      `json:"monthlyIncome"`
	Debts                  []models.DebtObligationEntry `json:"debts"`
	ProposedHousingPayment float64                      `json:"proposedHousingPayment,omitempty"`
	CurrentHousingPayment  float64                      `json:"currentHousingPayment,omitempty"`
	LoanAmount             float64                      `json:"loanAmount,omitempty"`
	Program                models.LoanProgram           `json:"program"`
}

// DebtBreakdown groups existing obligations by category.
type DebtBreakdown struct {
	Revolving   float64 `json:"revolving"`
	Installment float64 `json:"installment"`
	Mortgage    float64 `json:"mortgage"`
	Other       float64 `json:"other"`
}

type Output struct {
	ApplicationID        string                `json:"applicationId"`
	HousingDTI           float64               `json:"housingDti"`
	TotalDTI             float64               `json:"totalDti"`
	BackendDTI           float64               `json:"backendDti"`
	HousingPayment       float64               `json:"housingPayment"`
	TotalMonthlyDebt     float64               `json:"totalMonthlyDebt"`
	DebtBreakdown        DebtBreakdown         `json:"debtBreakdown"`
	ConcentrationRatio   float64               `json:"concentrationRatio"`
	ComplianceStatus     string                `json:"complianceStatus"`
	RiskScore            float64               `json:"riskScore"`
	RiskBucket           string                `json:"riskBucket"`
	PaymentShock         string                `json:"paymentShock,omitempty"`
	Issues               []string              `json:"issues"`
	RequiresVerification bool                  `json:"requiresVerification"`
	Result               models.CategoryResult `json:"dtiResult"`
}
