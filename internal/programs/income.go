// internal/programs/income.go
package programs

import "mortgage-workers/internal/models"

// Income calculation methods. Conservative excludes anything under a
// year of stability and haircuts poorly documented income; standard
// tolerates six months.
const (
	MethodConservative = "conservative"
	MethodStandard     = "standard"
	MethodAggressive   = "aggressive"
)

func ValidCalculationMethod(method string) bool {
	switch method {
	case MethodConservative, MethodStandard, MethodAggressive:
		return true
	}
	return false
}

// Stability requirements in months before income qualifies.
const (
	ConservativeStabilityMonths = 12
	StandardStabilityMonths     = 6
)

// Haircuts applied to qualifying income.
const (
	DecliningIncomeHaircut   = 0.75
	PoorDocumentationHaircut = 0.80
)

// Year-over-year change bands, in percent.
const (
	DecliningTrendThreshold = -10.0
	GrowingTrendThreshold   = 10.0
)

// Stability score penalties from the 100-point baseline.
const (
	ShortTenurePenalty       = 15.0
	DecliningTrendPenalty    = 20.0
	VariableIncomePenalty    = 10.0
	SelfEmploymentPenalty    = 15.0
	PoorDocumentationPenalty = 10.0
	StrongTenureMonths       = 24
)

// Stability risk level thresholds.
const (
	StabilityLowRiskFloor    = 80.0
	StabilityMediumRiskFloor = 60.0
)

var baseIncomeTypes = map[models.IncomeSourceType]bool{
	models.IncomeBaseSalary:  true,
	models.IncomeHourlyWages: true,
}

var variableIncomeTypes = map[models.IncomeSourceType]bool{
	models.IncomeOvertime:       true,
	models.IncomeBonus:          true,
	models.IncomeCommission:     true,
	models.IncomeSelfEmployment: true,
}

func IsBaseIncome(t models.IncomeSourceType) bool     { return baseIncomeTypes[t] }
func IsVariableIncome(t models.IncomeSourceType) bool { return variableIncomeTypes[t] }
