// internal/programs/decision.go
package programs

import "mortgage-workers/internal/models"

// pointBand awards points when the metric clears the bound.
type creditPointBand struct {
	MinScore int
	Points   float64
}

var creditPointBands = []creditPointBand{
	{740, 40},
	{680, 35},
	{640, 25},
	{620, 20},
	{580, 15},
}

// CreditPoints maps a representative score to its decision weight (0-40).
func CreditPoints(score int) float64 {
	for _, b := range creditPointBands {
		if score >= b.MinScore {
			return b.Points
		}
	}
	return 0
}

type dtiPointBand struct {
	MaxDTI float64
	Points float64
}

var dtiPointBands = []dtiPointBand{
	{0.28, 30},
	{0.36, 25},
	{0.43, 15},
	{0.50, 8},
}

// DTIPoints maps a total DTI ratio to its decision weight (0-30).
func DTIPoints(dti float64) float64 {
	for _, b := range dtiPointBands {
		if dti <= b.MaxDTI {
			return b.Points
		}
	}
	return 0
}

type ltvPointBand struct {
	MaxLTV float64
	Points float64
}

var ltvPointBands = []ltvPointBand{
	{0.80, 20},
	{0.90, 15},
	{0.95, 10},
}

// LTVPoints maps an LTV to its decision weight (0-20). LTVs up to 97% earn
// a reduced award only on government-backed programs.
func LTVPoints(ltv float64, program models.LoanProgram) float64 {
	for _, b := range ltvPointBands {
		if ltv <= b.MaxLTV {
			return b.Points
		}
	}
	if ltv <= 0.97 && (program == models.LoanProgramFHA || program == models.LoanProgramVA) {
		return 8
	}
	return 0
}

// Fixed point awards and bonuses.
const (
	GovernmentProgramBonus  = 7.0
	CompliancePoints        = 10.0
	IncomeVerificationBonus = 5.0
	DocumentQualityBonus    = 5.0
	DocumentQualityFloor    = 80.0
)

// Decision thresholds on the clamped 0-100 total.
const (
	ApproveThreshold     = 80.0
	ConditionalThreshold = 60.0
)

// Denial thresholds used to derive denial reasons.
const (
	DenialCreditFloor = 620
	DenialMaxDTI      = 0.43
	DenialMaxLTV      = 0.95
)

// GradeForScore maps the total score to grade and pricing tier. Denials
// always grade F/INELIGIBLE regardless of score.
func GradeForScore(score float64, denied bool) (models.RiskGrade, models.PricingTier) {
	if denied {
		return models.GradeF, models.TierIneligible
	}
	switch {
	case score >= 90:
		return models.GradeA, models.TierPrime
	case score >= 80:
		return models.GradeB, models.TierPrime
	case score >= 60:
		return models.GradeC, models.TierNearPrime
	default:
		return models.GradeD, models.TierSubprime
	}
}

// Loan term pricing.
const (
	BaseNoteRate       = 0.065
	APRSpread          = 0.0025
	ClosingCostRatio   = 0.03
	ApprovalValidDays  = 120
	DefaultTermMonths  = 360
)

// RateAdjustmentForScore returns the score-driven rate adjustment in basis
// points applied to the base note rate.
func RateAdjustmentForScore(score float64) float64 {
	switch {
	case score >= 90:
		return -25
	case score >= 80:
		return 0
	case score >= 60:
		return 50
	default:
		return 100
	}
}

var programRateAdjustments = map[models.LoanProgram]float64{
	models.LoanProgramFHA:   -25,
	models.LoanProgramJumbo: 25,
	models.LoanProgramNonQM: 200,
}

// ProgramRateAdjustment returns the program-driven rate adjustment in
// basis points.
func ProgramRateAdjustment(program models.LoanProgram) float64 {
	return programRateAdjustments[program]
}

// EscrowRequired reports whether escrow must be established for the
// program and LTV.
func EscrowRequired(program models.LoanProgram, ltv float64) bool {
	switch program {
	case models.LoanProgramFHA, models.LoanProgramVA, models.LoanProgramUSDA:
		return true
	}
	return ltv > PMIThreshold
}
