// internal/workers/property/calculate-ltv/models.go
package calculateltv

import "mortgage-workers/internal/models"

// Input carries the collateral and loan figures for LTV analysis.
type Input struct {
	ApplicationID    string             `json:"applicationId"`
	LoanAmount       float64            `json:"loanAmount"`
	AppraisedValue   float64            `json:"appraisedValue"`
	PurchasePrice    float64            `json:"purchasePrice,omitempty"`
	DownPayment      float64            `json:"downPayment"`
	SubordinateLiens float64            `json:"subordinateLiens,omitempty"`
	Program          models.LoanProgram `json:"loanProgram"`
	Purpose          models.LoanPurpose `json:"loanPurpose"`
}

// DownPaymentAnalysis compares the offered down payment against program
// rules.
type DownPaymentAnalysis struct {
	Amount           float64 `json:"amount"`
	Ratio            float64 `json:"ratio"`
	MinimumRequired  float64 `json:"minimumRequired"`
	RecommendedRatio float64 `json:"recommendedRatio"`
	MeetsMinimum     bool    `json:"meetsMinimum"`
	MeetsRecommended bool    `json:"meetsRecommended"`
}

// MortgageInsurance describes the PMI/MIP obligation for the loan.
type MortgageInsurance struct {
	Required         bool    `json:"required"`
	AnnualRate       float64 `json:"annualRate"`
	MonthlyPremium   float64 `json:"monthlyPremium"`
	RemovalLTV       float64 `json:"removalLtv,omitempty"`
	RemovalPrincipal float64 `json:"removalPrincipal,omitempty"`
}

type Output struct {
	ApplicationID     string               `json:"applicationId"`
	LTV               float64              `json:"ltv"`
	CLTV              float64              `json:"cltv"`
	CollateralValue   float64              `json:"collateralValue"`
	Equity            float64              `json:"equity"`
	EquityRatio       float64              `json:"equityRatio"`
	MaxAllowedLTV     float64              `json:"maxAllowedLtv"`
	WithinProgramMax  bool                 `json:"withinProgramMax"`
	RiskLevel         models.RiskLevel     `json:"riskLevel"`
	DownPayment       DownPaymentAnalysis  `json:"downPayment"`
	MortgageInsurance MortgageInsurance    `json:"mortgageInsurance"`
	RedFlags          []string             `json:"redFlags"`
	Result            models.CategoryResult `json:"ltvResult"`
}
