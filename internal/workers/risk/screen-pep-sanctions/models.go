// internal/workers/risk/screen-pep-sanctions/models.go
package screenpepsanctions

import (
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/providers"
)

type Input struct {
	ApplicationID string              `json:"applicationId"`
	Borrower      models.BorrowerInfo `json:"borrower"`
	// Lists restricts screening to the named sanctions lists. Empty
	// means every list the provider serves.
	Lists []string `json:"sanctionsLists,omitempty"`
}

// ComplianceReport documents what was screened and what was found, for
// the audit trail.
type ComplianceReport struct {
	ScreeningDate    string   `json:"screeningDate"`
	ListsChecked     []string `json:"listsChecked"`
	TotalMatches     int      `json:"totalMatches"`
	PEPIdentified    bool     `json:"pepIdentified"`
	DecisionBasis    string   `json:"decisionBasis"`
	ReviewRequired   bool     `json:"reviewRequired"`
	ReportableToAuth bool     `json:"reportableToAuthorities"`
}

type Output struct {
	ApplicationID                string                     `json:"applicationId"`
	IsPEP                        bool                       `json:"isPep"`
	PEPRiskLevel                 string                     `json:"pepRiskLevel,omitempty"`
	SanctionsMatches             []providers.ScreeningMatch `json:"sanctionsMatches"`
	SanctionsRiskScore           float64                    `json:"sanctionsRiskScore"`
	WatchlistMatches             []providers.ScreeningMatch `json:"watchlistMatches"`
	WatchlistRiskScore           float64                    `json:"watchlistRiskScore"`
	CriminalRiskScore            float64                    `json:"criminalRiskScore"`
	TerrorismRiskScore           float64                    `json:"terrorismRiskScore"`
	JurisdictionRiskScore        float64                    `json:"jurisdictionRiskScore"`
	OverallRiskScore             float64                    `json:"overallRiskScore"`
	RiskLevel                    models.RiskLevel           `json:"riskLevel"`
	RiskFactors                  []string                   `json:"riskFactors"`
	PEPSanctionsClear            bool                       `json:"pepSanctionsClear"`
	RequiresEnhancedDueDiligence bool                       `json:"requiresEnhancedDueDiligence"`
	RequiresOngoingMonitoring    bool                       `json:"requiresOngoingMonitoring"`
	ComplianceReport             ComplianceReport           `json:"complianceReport"`
	Confidence                   float64                    `json:"confidence"`
	Result                       models.CategoryResult      `json:"sanctionsResult"`
}
