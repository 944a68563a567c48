// internal/programs/dti.go
package programs

import "mortgage-workers/internal/models"

// DTIThresholds holds per-program debt-to-income limits expressed as
// ratios, not percentages.
type DTIThresholds struct {
	MaxTotal       float64
	MaxHousing     float64
	PreferredTotal float64
}

var dtiLimits = map[models.LoanProgram]DTIThresholds{
	models.LoanProgramConventional: {MaxTotal: 0.43, MaxHousing: 0.28, PreferredTotal: 0.36},
	models.LoanProgramFHA:          {MaxTotal: 0.57, MaxHousing: 0.31, PreferredTotal: 0.43},
	models.LoanProgramVA:           {MaxTotal: 0.41, MaxHousing: 0.31, PreferredTotal: 0.36},
	models.LoanProgramUSDA:         {MaxTotal: 0.41, MaxHousing: 0.29, PreferredTotal: 0.36},
	models.LoanProgramJumbo:        {MaxTotal: 0.43, MaxHousing: 0.28, PreferredTotal: 0.36},
	models.LoanProgramNonQM:        {MaxTotal: 0.50, MaxHousing: 0.36, PreferredTotal: 0.43},
}

func DTILimits(program models.LoanProgram) (DTIThresholds, bool) {
	limits, ok := dtiLimits[program]
	return limits, ok
}

// Debt category keyword lists used for substring classification of
// heterogeneous debt type strings.
var DebtCategoryKeywords = map[string][]string{
	"revolving":   {"credit_card", "credit card", "heloc", "line of credit", "revolving"},
	"installment": {"auto", "car", "student", "personal", "installment"},
	"mortgage":    {"mortgage", "home loan", "home_loan"},
}

// AssumedNoteRate is the rate used to estimate a housing payment when the
// application carries only a loan amount.
const AssumedNoteRate = 0.07

// PITIFactor converts an estimated principal-and-interest payment to a
// full PITI estimate.
const PITIFactor = 1.3

// FallbackHousingRatio estimates a housing payment from income when
// neither an explicit payment nor a loan amount is available.
const FallbackHousingRatio = 0.28
