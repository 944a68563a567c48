// internal/workers/credit/analyze-credit-score/models.go
package analyzecreditscore

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID string                    `json:"applicationId"`
	CreditScores  []models.CreditScoreEntry `json:"creditScores"`
	Programs      []models.LoanProgram      `json:"programs,omitempty"`
	LoanAmount    float64                   `json:"loanAmount,omitempty"`
	DTI           float64                   `json:"dti,omitempty"`
	LTV           float64                   `json:"ltv,omitempty"`
}

// ProgramEvaluation is the per-program eligibility and pricing verdict.
type ProgramEvaluation struct {
	Program              models.LoanProgram `json:"program"`
	Eligible             bool               `json:"eligible"`
	MinimumScore         int                `json:"minimumScore"`
	RateTier             models.RateTier    `json:"rateTier"`
	PricingAdjustmentBps float64            `json:"pricingAdjustmentBps"`
	Reasons              []string           `json:"reasons,omitempty"`
}

type Output struct {
	ApplicationID       string                `json:"applicationId"`
	RepresentativeScore int                   `json:"representativeScore"`
	Rating              string                `json:"rating"`
	Evaluations         []ProgramEvaluation   `json:"evaluations"`
	EligiblePrograms    []models.LoanProgram  `json:"eligiblePrograms"`
	Recommendation      string                `json:"recommendation"`
	Confidence          float64               `json:"confidence"`
	Result              models.CategoryResult `json:"creditResult"`
}
