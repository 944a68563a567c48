// internal/programs/credit.go
package programs

import "mortgage-workers/internal/models"

// Program-specific credit floors. Jumbo additionally requires the loan
// amount to exceed the conforming limit, checked by the caller.
var minCreditScores = map[models.LoanProgram]int{
	models.LoanProgramConventional: 620,
	models.LoanProgramFHA:          580,
	models.LoanProgramVA:           620,
	models.LoanProgramUSDA:         640,
	models.LoanProgramJumbo:        700,
	models.LoanProgramNonQM:        550,
}

// ConformingLoanLimit is the single-unit conforming ceiling used to gate
// jumbo eligibility.
const ConformingLoanLimit = 766550.0

func MinScore(program models.LoanProgram) (int, bool) {
	min, ok := minCreditScores[program]
	return min, ok
}

// rateTierBand maps a score floor to a pricing tier, evaluated in order.
type rateTierBand struct {
	Floor int
	Tier  models.RateTier
}

var standardRateTiers = []rateTierBand{
	{760, models.RateTierSuperPrime},
	{720, models.RateTierPrime},
	{680, models.RateTierNearPrime},
	{620, models.RateTierSubprime},
	{0, models.RateTierDeepSubprime},
}

var nonQMRateTiers = []rateTierBand{
	{720, models.RateTierPrime},
	{680, models.RateTierNearPrime},
	{620, models.RateTierSubprime},
	{0, models.RateTierDeepSubprime},
}

// RateTier returns the pricing tier for a representative score. Non-QM uses
// its own lower-threshold band table.
func RateTier(program models.LoanProgram, score int) models.RateTier {
	bands := standardRateTiers
	if program == models.LoanProgramNonQM {
		bands = nonQMRateTiers
	}
	for _, b := range bands {
		if score >= b.Floor {
			return b.Tier
		}
	}
	return models.RateTierDeepSubprime
}

// CreditRating is the qualitative band for a representative score.
func CreditRating(score int) string {
	switch {
	case score >= 740:
		return "excellent"
	case score >= 680:
		return "good"
	case score >= 620:
		return "fair"
	case score >= 580:
		return "poor"
	default:
		return "bad_credit"
	}
}

// pricingFunc computes the LLPA-style add-on in basis points for one
// program given score and LTV.
type pricingFunc func(score int, ltv float64) float64

var pricingAdjustments = map[models.LoanProgram]pricingFunc{
	models.LoanProgramConventional: conventionalLLPA,
	models.LoanProgramFHA:          fhaAddOn,
	models.LoanProgramVA:           func(int, float64) float64 { return 0 },
	models.LoanProgramUSDA:         usdaAddOn,
	models.LoanProgramJumbo:        jumboAddOn,
	models.LoanProgramNonQM:        nonQMAddOn,
}

// PricingAdjustment returns the total rate add-on in basis points for the
// program, representative score and LTV.
func PricingAdjustment(program models.LoanProgram, score int, ltv float64) float64 {
	fn, ok := pricingAdjustments[program]
	if !ok {
		return 0
	}
	return fn(score, ltv)
}

func conventionalLLPA(score int, ltv float64) float64 {
	var bp float64
	if score < 720 {
		switch {
		case score >= 680:
			bp = 25
		case score >= 660:
			bp = 50
		case score >= 640:
			bp = 75
		case score >= 620:
			bp = 100
		default:
			bp = 150
		}
	}
	if ltv > 0.80 {
		bp += 25
	}
	if ltv > 0.90 {
		bp += 25
	}
	return bp
}

func fhaAddOn(score int, _ float64) float64 {
	if score < 620 {
		return 25
	}
	return 0
}

func usdaAddOn(score int, _ float64) float64 {
	if score < 680 {
		return 12.5
	}
	return 0
}

func jumboAddOn(score int, _ float64) float64 {
	if score >= 740 {
		return 0
	}
	switch {
	case score >= 720:
		return 25
	case score >= 700:
		return 50
	default:
		return 100
	}
}

func nonQMAddOn(score int, _ float64) float64 {
	bp := 200.0
	if score < 680 {
		bp += 50
	}
	if score < 620 {
		bp += 100
	}
	if score < 580 {
		bp += 150
	}
	return bp
}
