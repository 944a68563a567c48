// internal/programs/ltv.go
package programs

import "mortgage-workers/internal/models"

// LTVRiskBands are cumulative upper bounds mapped to risk levels, checked
// in order with <=.
type LTVRiskBands struct {
	Low      float64
	Medium   float64
	High     float64
	VeryHigh float64
}

var ltvRiskBands = map[models.LoanProgram]LTVRiskBands{
	models.LoanProgramConventional: {Low: 0.70, Medium: 0.80, High: 0.90, VeryHigh: 0.95},
	models.LoanProgramFHA:          {Low: 0.80, Medium: 0.90, High: 0.96, VeryHigh: 0.965},
	models.LoanProgramVA:           {Low: 0.90, Medium: 0.95, High: 1.00, VeryHigh: 1.00},
	models.LoanProgramUSDA:         {Low: 0.90, Medium: 0.95, High: 1.00, VeryHigh: 1.00},
	models.LoanProgramJumbo:        {Low: 0.70, Medium: 0.75, High: 0.80, VeryHigh: 0.85},
	models.LoanProgramNonQM:        {Low: 0.70, Medium: 0.80, High: 0.90, VeryHigh: 0.95},
}

// LTVRiskLevel bands an LTV for the program.
func LTVRiskLevel(program models.LoanProgram, ltv float64) models.RiskLevel {
	bands, ok := ltvRiskBands[program]
	if !ok {
		bands = ltvRiskBands[models.LoanProgramConventional]
	}
	switch {
	case ltv <= bands.Low:
		return models.RiskLow
	case ltv <= bands.Medium:
		return models.RiskMedium
	case ltv <= bands.High:
		return models.RiskHigh
	default:
		return models.RiskVeryHigh
	}
}

var maxLTV = map[models.LoanProgram]float64{
	models.LoanProgramConventional: 0.97,
	models.LoanProgramFHA:          0.965,
	models.LoanProgramVA:           1.00,
	models.LoanProgramUSDA:         1.00,
	models.LoanProgramJumbo:        0.80,
	models.LoanProgramNonQM:        0.90,
}

// MaxLTV returns the program ceiling before purpose overrides.
func MaxLTV(program models.LoanProgram) (float64, bool) {
	max, ok := maxLTV[program]
	return max, ok
}

// purposeOverride caps LTV for specific program/purpose combinations.
type purposeKey struct {
	Program models.LoanProgram
	Purpose models.LoanPurpose
}

var purposeOverrides = map[purposeKey]float64{
	{models.LoanProgramConventional, models.LoanPurposeCashOut}: 0.95,
	{models.LoanProgramJumbo, models.LoanPurposeCashOut}:        0.70,
	{models.LoanProgramFHA, models.LoanPurposeRefinance}:        0.975,
}

// MaxLTVForPurpose applies any purpose-specific override to the program
// ceiling.
func MaxLTVForPurpose(program models.LoanProgram, purpose models.LoanPurpose) (float64, bool) {
	if override, ok := purposeOverrides[purposeKey{program, purpose}]; ok {
		return override, true
	}
	return MaxLTV(program)
}

// PMI requirement rules. Conventional and jumbo require insurance strictly
// above 80% LTV with removal at 78%; FHA carries MIP above 78% with no
// standard removal; VA and USDA never require it.
const (
	PMIThreshold        = 0.80
	PMIRemovalThreshold = 0.78
	MIPThreshold        = 0.78
)

// RequiresMortgageInsurance reports whether the program needs PMI/MIP at
// the given LTV. The boundary is strict: exactly 80% conventional is clear.
func RequiresMortgageInsurance(program models.LoanProgram, ltv float64) bool {
	switch program {
	case models.LoanProgramConventional, models.LoanProgramJumbo, models.LoanProgramNonQM:
		return ltv > PMIThreshold
	case models.LoanProgramFHA:
		return ltv > MIPThreshold
	default:
		return false
	}
}

// pmiRateBand maps an LTV ceiling to an annual PMI rate.
type pmiRateBand struct {
	MaxLTV float64
	Rate   float64
}

var pmiRateBands = []pmiRateBand{
	{0.85, 0.0045},
	{0.90, 0.0055},
	{0.95, 0.0070},
	{1.00, 0.0085},
}

// PMIRate returns the annual PMI rate for an LTV above the PMI threshold;
// zero when no insurance is required.
func PMIRate(ltv float64) float64 {
	if ltv <= PMIThreshold {
		return 0
	}
	for _, b := range pmiRateBands {
		if ltv <= b.MaxLTV {
			return b.Rate
		}
	}
	return pmiRateBands[len(pmiRateBands)-1].Rate
}

// DownPaymentRule holds statutory minimum and recommended down payments as
// fractions of appraised value.
type DownPaymentRule struct {
	Minimum     float64
	Recommended float64
}

var downPaymentRules = map[models.LoanProgram]DownPaymentRule{
	models.LoanProgramConventional: {Minimum: 0.03, Recommended: 0.20},
	models.LoanProgramFHA:          {Minimum: 0.035, Recommended: 0.10},
	models.LoanProgramVA:           {Minimum: 0, Recommended: 0},
	models.LoanProgramUSDA:         {Minimum: 0, Recommended: 0},
	models.LoanProgramJumbo:        {Minimum: 0.20, Recommended: 0.25},
	models.LoanProgramNonQM:        {Minimum: 0.10, Recommended: 0.20},
}

func DownPayment(program models.LoanProgram) (DownPaymentRule, bool) {
	rule, ok := downPaymentRules[program]
	return rule, ok
}
