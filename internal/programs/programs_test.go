// internal/programs/programs_test.go
package programs

import (
	"testing"

	"mortgage-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Credit Tables
// ==========================

func TestMinScore_AllPrograms(t *testing.T) {
	tests := []struct {
		program models.LoanProgram
		want    int
	}{
		{models.LoanProgramConventional, 620},
		{models.LoanProgramFHA, 580},
		{models.LoanProgramVA, 620},
		{models.LoanProgramUSDA, 640},
		{models.LoanProgramJumbo, 700},
		{models.LoanProgramNonQM, 550},
	}

	for _, tt := range tests {
		t.Run(string(tt.program), func(t *testing.T) {
			min, ok := MinScore(tt.program)
			assert.True(t, ok)
			assert.Equal(t, tt.want, min)
		})
	}
}

func TestMinScore_UnknownProgram(t *testing.T) {
	_, ok := MinScore(models.LoanProgram("reverse"))
	assert.False(t, ok)
}

func TestCreditRating_Bands(t *testing.T) {
	assert.Equal(t, "excellent", CreditRating(740))
	assert.Equal(t, "good", CreditRating(739))
	assert.Equal(t, "good", CreditRating(680))
	assert.Equal(t, "fair", CreditRating(620))
	assert.Equal(t, "poor", CreditRating(580))
	assert.Equal(t, "bad_credit", CreditRating(579))
}

func TestRateTier_NonQMUsesOwnBands(t *testing.T) {
	// 760 is super prime on standard programs but only prime under non-QM.
	assert.Equal(t, models.RateTierSuperPrime, RateTier(models.LoanProgramConventional, 760))
	assert.Equal(t, models.RateTierPrime, RateTier(models.LoanProgramNonQM, 760))
	assert.Equal(t, models.RateTierDeepSubprime, RateTier(models.LoanProgramNonQM, 500))
}

func TestPricingAdjustment_ConventionalLLPA(t *testing.T) {
	tests := []struct {
		name  string
		score int
		ltv   float64
		want  float64
	}{
		{"high score low ltv pays nothing", 760, 0.60, 0},
		{"680-699 band", 690, 0.60, 25},
		{"660-679 band", 670, 0.60, 50},
		{"640-659 band", 650, 0.60, 75},
		{"620-639 band", 630, 0.60, 100},
		{"below 620", 600, 0.60, 150},
		{"ltv above 80 adds 25", 690, 0.85, 50},
		{"ltv above 90 adds 50", 690, 0.92, 75},
		{"high score still pays ltv add-on", 760, 0.92, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PricingAdjustment(models.LoanProgramConventional, tt.score, tt.ltv))
		})
	}
}

func TestPricingAdjustment_OtherPrograms(t *testing.T) {
	assert.Equal(t, 25.0, PricingAdjustment(models.LoanProgramFHA, 600, 0.90))
	assert.Equal(t, 0.0, PricingAdjustment(models.LoanProgramFHA, 640, 0.90))
	assert.Equal(t, 12.5, PricingAdjustment(models.LoanProgramUSDA, 660, 0.90))
	assert.Equal(t, 0.0, PricingAdjustment(models.LoanProgramVA, 580, 0.99))
	assert.Equal(t, 100.0, PricingAdjustment(models.LoanProgramJumbo, 690, 0.70))
	assert.Equal(t, 25.0, PricingAdjustment(models.LoanProgramJumbo, 725, 0.70))
	// Non-QM stacks its base and every add-on below 580.
	assert.Equal(t, 500.0, PricingAdjustment(models.LoanProgramNonQM, 560, 0.70))
	assert.Equal(t, 200.0, PricingAdjustment(models.LoanProgramNonQM, 700, 0.70))
}

// ==========================
// DTI Tables
// ==========================

func TestDTILimits(t *testing.T) {
	fha, ok := DTILimits(models.LoanProgramFHA)
	assert.True(t, ok)
	assert.Equal(t, 0.57, fha.MaxTotal)
	assert.Equal(t, 0.31, fha.MaxHousing)
	assert.Equal(t, 0.43, fha.PreferredTotal)

	_, ok = DTILimits(models.LoanProgram("balloon"))
	assert.False(t, ok)
}

// ==========================
// LTV Tables
// ==========================

func TestRequiresMortgageInsurance_StrictBoundary(t *testing.T) {
	// Exactly 80% conventional does not require PMI; anything above does.
	assert.False(t, RequiresMortgageInsurance(models.LoanProgramConventional, 0.80))
	assert.True(t, RequiresMortgageInsurance(models.LoanProgramConventional, 0.8001))
	assert.True(t, RequiresMortgageInsurance(models.LoanProgramJumbo, 0.81))

	// FHA MIP kicks in above 78%.
	assert.False(t, RequiresMortgageInsurance(models.LoanProgramFHA, 0.78))
	assert.True(t, RequiresMortgageInsurance(models.LoanProgramFHA, 0.79))

	// VA and USDA never carry it.
	assert.False(t, RequiresMortgageInsurance(models.LoanProgramVA, 0.99))
	assert.False(t, RequiresMortgageInsurance(models.LoanProgramUSDA, 1.00))
}

func TestPMIRate_Bands(t *testing.T) {
	assert.Equal(t, 0.0, PMIRate(0.80))
	assert.Equal(t, 0.0045, PMIRate(0.82))
	assert.Equal(t, 0.0055, PMIRate(0.88))
	assert.Equal(t, 0.0070, PMIRate(0.93))
	assert.Equal(t, 0.0085, PMIRate(0.97))
}

func TestMaxLTVForPurpose_Overrides(t *testing.T) {
	max, ok := MaxLTVForPurpose(models.LoanProgramConventional, models.LoanPurposeCashOut)
	assert.True(t, ok)
	assert.Equal(t, 0.95, max)

	max, ok = MaxLTVForPurpose(models.LoanProgramJumbo, models.LoanPurposeCashOut)
	assert.True(t, ok)
	assert.Equal(t, 0.70, max)

	max, ok = MaxLTVForPurpose(models.LoanProgramFHA, models.LoanPurposeRefinance)
	assert.True(t, ok)
	assert.Equal(t, 0.975, max)

	// No override falls back to the program ceiling.
	max, ok = MaxLTVForPurpose(models.LoanProgramConventional, models.LoanPurposePurchase)
	assert.True(t, ok)
	assert.Equal(t, 0.97, max)
}

func TestLTVRiskLevel_ProgramSpecificBands(t *testing.T) {
	assert.Equal(t, models.RiskLow, LTVRiskLevel(models.LoanProgramConventional, 0.70))
	assert.Equal(t, models.RiskMedium, LTVRiskLevel(models.LoanProgramConventional, 0.80))
	assert.Equal(t, models.RiskHigh, LTVRiskLevel(models.LoanProgramConventional, 0.90))
	assert.Equal(t, models.RiskVeryHigh, LTVRiskLevel(models.LoanProgramConventional, 0.96))

	// The same 80% LTV is still low risk under FHA bands.
	assert.Equal(t, models.RiskLow, LTVRiskLevel(models.LoanProgramFHA, 0.80))
	assert.Equal(t, models.RiskVeryHigh, LTVRiskLevel(models.LoanProgramJumbo, 0.85001))
}

// ==========================
// Property Tables
// ==========================

func TestAgeRiskScore_Bands(t *testing.T) {
	assert.Equal(t, 10.0, AgeRiskScore(0))
	assert.Equal(t, 10.0, AgeRiskScore(5))
	assert.Equal(t, 20.0, AgeRiskScore(6))
	assert.Equal(t, 35.0, AgeRiskScore(30))
	assert.Equal(t, 55.0, AgeRiskScore(50))
	assert.Equal(t, 75.0, AgeRiskScore(75))
	assert.Equal(t, 90.0, AgeRiskScore(100))
	assert.Equal(t, 95.0, AgeRiskScore(150))
	assert.Equal(t, 95.0, AgeRiskScore(250))
}

func TestPropertyTypeMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, PropertyTypeMultiplier(models.PropertySingleFamily))
	assert.Equal(t, 1.8, PropertyTypeMultiplier(models.PropertyCommercial))
	assert.Equal(t, 1.8, PropertyTypeMultiplier(models.PropertyType("houseboat")))
}

func TestPropertyRiskLevel_ComponentBands(t *testing.T) {
	assert.Equal(t, models.RiskHigh, PropertyRiskLevel("location", 70))
	assert.Equal(t, models.RiskMedium, PropertyRiskLevel("location", 45))
	assert.Equal(t, models.RiskLow, PropertyRiskLevel("location", 25))
	assert.Equal(t, models.RiskVeryLow, PropertyRiskLevel("location", 10))

	// Environmental bands are tighter than location bands.
	assert.Equal(t, models.RiskHigh, PropertyRiskLevel("environmental", 50))
	assert.Equal(t, models.RiskVeryLow, PropertyRiskLevel("environmental", 5))
}

// ==========================
// Decision Tables
// ==========================

func TestCreditPoints(t *testing.T) {
	assert.Equal(t, 40.0, CreditPoints(800))
	assert.Equal(t, 35.0, CreditPoints(700))
	assert.Equal(t, 25.0, CreditPoints(650))
	assert.Equal(t, 20.0, CreditPoints(625))
	assert.Equal(t, 15.0, CreditPoints(590))
	assert.Equal(t, 0.0, CreditPoints(550))
}

func TestDTIPoints(t *testing.T) {
	assert.Equal(t, 30.0, DTIPoints(0.25))
	assert.Equal(t, 25.0, DTIPoints(0.30))
	assert.Equal(t, 15.0, DTIPoints(0.40))
	assert.Equal(t, 8.0, DTIPoints(0.48))
	assert.Equal(t, 0.0, DTIPoints(0.55))
}

func TestLTVPoints(t *testing.T) {
	assert.Equal(t, 20.0, LTVPoints(0.70, models.LoanProgramConventional))
	assert.Equal(t, 15.0, LTVPoints(0.85, models.LoanProgramConventional))
	assert.Equal(t, 10.0, LTVPoints(0.95, models.LoanProgramConventional))
	assert.Equal(t, 0.0, LTVPoints(0.96, models.LoanProgramConventional))
	assert.Equal(t, 8.0, LTVPoints(0.96, models.LoanProgramFHA))
	assert.Equal(t, 8.0, LTVPoints(0.97, models.LoanProgramVA))
	assert.Equal(t, 0.0, LTVPoints(0.98, models.LoanProgramFHA))
}

func TestGradeForScore(t *testing.T) {
	grade, tier := GradeForScore(92, false)
	assert.Equal(t, models.GradeA, grade)
	assert.Equal(t, models.TierPrime, tier)

	grade, tier = GradeForScore(85, false)
	assert.Equal(t, models.GradeB, grade)
	assert.Equal(t, models.TierPrime, tier)

	grade, tier = GradeForScore(65, false)
	assert.Equal(t, models.GradeC, grade)
	assert.Equal(t, models.TierNearPrime, tier)

	grade, tier = GradeForScore(40, false)
	assert.Equal(t, models.GradeD, grade)
	assert.Equal(t, models.TierSubprime, tier)

	// Denial overrides any score.
	grade, tier = GradeForScore(95, true)
	assert.Equal(t, models.GradeF, grade)
	assert.Equal(t, models.TierIneligible, tier)
}

func TestEscrowRequired(t *testing.T) {
	assert.True(t, EscrowRequired(models.LoanProgramFHA, 0.50))
	assert.True(t, EscrowRequired(models.LoanProgramVA, 0.50))
	assert.True(t, EscrowRequired(models.LoanProgramConventional, 0.85))
	assert.False(t, EscrowRequired(models.LoanProgramConventional, 0.75))
}
