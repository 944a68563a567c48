// internal/workers/credit/calculate-income/models.go
package calculateincome

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID string                     `json:"applicationId"`
	IncomeSources []models.IncomeSourceEntry `json:"incomeSources"`
	Method        string                     `json:"calculationMethod,omitempty"`
}

// IncomeBreakdown splits qualified monthly income by category.
type IncomeBreakdown struct {
	Base     float64 `json:"base"`
	Variable float64 `json:"variable"`
	Other    float64 `json:"other"`
}

// StabilityAssessment scores how durable the qualified income is.
type StabilityAssessment struct {
	Score            float64  `json:"score"`
	RiskLevel        string   `json:"riskLevel"`
	StabilityFactors []string `json:"stabilityFactors"`
	RiskFactors      []string `json:"riskFactors"`
}

type Output struct {
	ApplicationID          string               `json:"applicationId"`
	QualifiedMonthlyIncome float64              `json:"qualifiedMonthlyIncome"`
	QualifiedAnnualIncome  float64              `json:"qualifiedAnnualIncome"`
	Breakdown              IncomeBreakdown      `json:"breakdown"`
	ExcludedIncome         float64              `json:"excludedIncome"`
	ExclusionReasons       []string             `json:"exclusionReasons"`
	AveragingApplied       bool                 `json:"averagingApplied"`
	CalculationMethod      string               `json:"calculationMethod"`
	Stability              StabilityAssessment  `json:"stability"`
	Confidence             float64              `json:"confidence"`
	Result                 models.CategoryResult `json:"incomeResult"`
}
