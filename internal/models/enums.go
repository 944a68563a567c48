// internal/models/enums.go
package models

type LoanProgram string

const (
	LoanProgramConventional LoanProgram = "conventional"
	LoanProgramFHA          LoanProgram = "fha"
	LoanProgramVA           LoanProgram = "va"
	LoanProgramUSDA         LoanProgram = "usda"
	LoanProgramJumbo        LoanProgram = "jumbo"
	LoanProgramNonQM        LoanProgram = "non_qm"
)

// AllLoanPrograms is the evaluation order used when a request does not
// restrict the program set.
var AllLoanPrograms = []LoanProgram{
	LoanProgramConventional,
	LoanProgramFHA,
	LoanProgramVA,
	LoanProgramUSDA,
	LoanProgramJumbo,
	LoanProgramNonQM,
}

func (p LoanProgram) Valid() bool {
	switch p {
	case LoanProgramConventional, LoanProgramFHA, LoanProgramVA,
		LoanProgramUSDA, LoanProgramJumbo, LoanProgramNonQM:
		return true
	}
	return false
}

type LoanPurpose string

const (
	LoanPurposePurchase  LoanPurpose = "purchase"
	LoanPurposeRefinance LoanPurpose = "refinance"
	LoanPurposeCashOut   LoanPurpose = "cash_out"
)

type IncomeFrequency string

const (
	FrequencyWeekly     IncomeFrequency = "weekly"
	FrequencyBiweekly   IncomeFrequency = "biweekly"
	FrequencySemimonthly IncomeFrequency = "semimonthly"
	FrequencyMonthly    IncomeFrequency = "monthly"
	FrequencyQuarterly  IncomeFrequency = "quarterly"
	FrequencyAnnually   IncomeFrequency = "annually"
	FrequencyHourly     IncomeFrequency = "hourly"
)

type IncomeSourceType string

const (
	IncomeBaseSalary     IncomeSourceType = "base_salary"
	IncomeHourlyWages    IncomeSourceType = "hourly_wages"
	IncomeOvertime       IncomeSourceType = "overtime"
	IncomeBonus          IncomeSourceType = "bonus"
	IncomeCommission     IncomeSourceType = "commission"
	IncomeSelfEmployment IncomeSourceType = "self_employment"
	IncomeRental         IncomeSourceType = "rental"
	IncomeRetirement     IncomeSourceType = "retirement"
	IncomeUnemployment   IncomeSourceType = "unemployment"
	IncomeOther          IncomeSourceType = "other"
)

type DebtType string

const (
	DebtCreditCard       DebtType = "credit_card"
	DebtAutoLoan         DebtType = "auto_loan"
	DebtStudentLoan      DebtType = "student_loan"
	DebtPersonalLoan     DebtType = "personal_loan"
	DebtMortgage         DebtType = "mortgage"
	DebtHELOC            DebtType = "heloc"
	DebtProposedMortgage DebtType = "proposed_mortgage"
	DebtOther            DebtType = "other"
)

type PropertyType string

const (
	PropertySingleFamily PropertyType = "single_family"
	PropertyCondo        PropertyType = "condo"
	PropertyTownhouse    PropertyType = "townhouse"
	PropertyMultiFamily  PropertyType = "multi_family"
	PropertyManufactured PropertyType = "manufactured"
	PropertyCommercial   PropertyType = "commercial"
)

// ValidationStatus is the intake tag a document carries after OCR and
// upstream checks.
type ValidationStatus string

const (
	ValidationStatusValid   ValidationStatus = "valid"
	ValidationStatusWarning ValidationStatus = "warning"
	ValidationStatusInvalid ValidationStatus = "invalid"
	ValidationStatusUnknown ValidationStatus = "unknown"
)

type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

type DecisionType string

const (
	DecisionApprove     DecisionType = "approve"
	DecisionConditional DecisionType = "conditional"
	DecisionDeny        DecisionType = "deny"
	DecisionPending     DecisionType = "pending"
)

type RiskGrade string

const (
	GradeA RiskGrade = "A"
	GradeB RiskGrade = "B"
	GradeC RiskGrade = "C"
	GradeD RiskGrade = "D"
	GradeF RiskGrade = "F"
)

type PricingTier string

const (
	TierPrime      PricingTier = "PRIME"
	TierNearPrime  PricingTier = "NEAR_PRIME"
	TierSubprime   PricingTier = "SUBPRIME"
	TierIneligible PricingTier = "INELIGIBLE"
)

// RateTier classifies a representative credit score for pricing.
type RateTier string

const (
	RateTierSuperPrime   RateTier = "super_prime"
	RateTierPrime        RateTier = "prime"
	RateTierNearPrime    RateTier = "near_prime"
	RateTierSubprime     RateTier = "subprime"
	RateTierDeepSubprime RateTier = "deep_subprime"
)
