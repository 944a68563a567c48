// internal/workers/underwriting/decide-loan/models.go
package decideloan

import "mortgage-workers/internal/models"

// Input carries the merged outputs of the five category scorers plus the
// loan facts the terms calculation needs. The category results are
// pointers so a missing upstream result is distinguishable from an empty
// one.
type Input struct {
	ApplicationID             string                 `json:"applicationId"`
	Program                   models.LoanProgram     `json:"loanProgram"`
	LoanAmount                float64                `json:"loanAmount"`
	AppraisedValue            float64                `json:"appraisedValue"`
	LoanTermMonths            int                    `json:"loanTermMonths,omitempty"`
	CreditScore               int                    `json:"representativeScore"`
	TotalDTI                  float64                `json:"totalDti"`
	LTV                       float64                `json:"ltv"`
	QualifiedMonthlyIncome    float64                `json:"qualifiedMonthlyIncome,omitempty"`
	RegulatoryCompliance      bool                   `json:"regulatoryComplianceStatus"`
	PEPSanctionsClear         bool                   `json:"pepSanctionsClear"`
	IncomeVerified            bool                   `json:"incomeVerified,omitempty"`
	DocumentAuthenticityScore float64                `json:"documentAuthenticityScore,omitempty"`
	CreditResult              *models.CategoryResult `json:"creditResult"`
	DTIResult                 *models.CategoryResult `json:"dtiResult"`
	LTVResult                 *models.CategoryResult `json:"ltvResult"`
	PropertyResult            *models.CategoryResult `json:"propertyResult"`
	KYCResult                 *models.CategoryResult `json:"kycResult"`
}

type Output struct {
	ApplicationID         string                `json:"applicationId"`
	Decision              models.DecisionResult `json:"decisionResult"`
	Rationale             string                `json:"decisionRationale"`
	KeyFactors            []string              `json:"keyFactors"`
	RiskMitigationFactors []string              `json:"riskMitigationFactors"`
	NextSteps             []string              `json:"nextSteps"`
}
