// internal/models/results.go
package models

// CategoryResult is the common output shape of every category scorer.
// Produced fresh per scoring call and never mutated afterwards; the
// decision engine only reads it.
type CategoryResult struct {
	Category        string    `json:"category"`
	RiskScore       float64   `json:"riskScore"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	Indicators      []string  `json:"indicators"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence,omitempty"`
}

// NewCategoryResult builds a result with non-nil slices so downstream
// consumers never see null lists in the serialized form.
func NewCategoryResult(category string, score float64, level RiskLevel) CategoryResult {
	return CategoryResult{
		Category:        category,
		RiskScore:       score,
		RiskLevel:       level,
		Indicators:      []string{},
		Recommendations: []string{},
	}
}

// DecisionResult is the terminal artifact of the pipeline. Conditions and
// DenialReasons are empty slices, never nil, when not applicable.
type DecisionResult struct {
	ApplicationID      string        `json:"applicationId"`
	Decision           DecisionType  `json:"decision"`
	TotalScore         float64       `json:"totalScore"`
	RiskGrade          RiskGrade     `json:"riskGrade"`
	PricingTier        PricingTier   `json:"pricingTier"`
	ScoreBreakdown     ScorePoints   `json:"scoreBreakdown"`
	Conditions         []string      `json:"conditions"`
	DenialReasons      []string      `json:"denialReasons"`
	LoanTerms          *LoanTerms    `json:"loanTerms,omitempty"`
	Confidence         float64       `json:"confidence"`
	ApprovalExpiresAt  string        `json:"approvalExpiresAt,omitempty"`
	DecidedAt          string        `json:"decidedAt"`
}

// ScorePoints is the decision engine's additive breakdown.
type ScorePoints struct {
	Credit             float64 `json:"credit"`
	DTI                float64 `json:"dti"`
	LTV                float64 `json:"ltv"`
	ProgramBonus       float64 `json:"programBonus"`
	Compliance         float64 `json:"compliance"`
	IncomeVerification float64 `json:"incomeVerification"`
	DocumentQuality    float64 `json:"documentQuality"`
}

// LoanTerms are the indicative terms attached to approvals.
type LoanTerms struct {
	InterestRate       float64 `json:"interestRate"`
	APR                float64 `json:"apr"`
	TermMonths         int     `json:"termMonths"`
	MonthlyPayment     float64 `json:"monthlyPayment"`
	MonthlyPMI         float64 `json:"monthlyPmi,omitempty"`
	EstimatedClosing   float64 `json:"estimatedClosingCosts"`
	EscrowRequired     bool    `json:"escrowRequired"`
	PrepaymentPenalty  bool    `json:"prepaymentPenalty"`
}
