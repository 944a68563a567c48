// internal/workers/risk/screen-kyc/models.go
package screenkyc

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID        string                  `json:"applicationId"`
	Borrower             models.BorrowerInfo     `json:"borrower"`
	Documents            []models.DocumentRecord `json:"documents"`
	VerifiedAnnualIncome float64                 `json:"verifiedAnnualIncome,omitempty"`
}

// VerificationResult is the outcome of one cross-document check.
type VerificationResult struct {
	Verified   bool     `json:"verified"`
	Confidence float64  `json:"confidence"`
	Methods    []string `json:"methods,omitempty"`
	Issues     []string `json:"issues,omitempty"`
}

// AuthenticityResult aggregates per-document authenticity scores.
type AuthenticityResult struct {
	OverallScore        float64            `json:"overallScore"`
	DocumentScores      map[string]float64 `json:"documentScores,omitempty"`
	SuspiciousDocuments []string           `json:"suspiciousDocuments,omitempty"`
}

// Inconsistency is one divergence found across data sources.
type Inconsistency struct {
	Type        string  `json:"type"`
	Severity    string  `json:"severity"`
	Description string  `json:"description"`
	Impact      float64 `json:"impact"`
}

type ConsistencyResult struct {
	Score           float64         `json:"score"`
	Inconsistencies []Inconsistency `json:"inconsistencies,omitempty"`
}

type FraudResult struct {
	RiskScore             float64  `json:"riskScore"`
	SyntheticIdentityRisk float64  `json:"syntheticIdentityRisk"`
	IdentityTheftRisk     bool     `json:"identityTheftRisk"`
	Indicators            []string `json:"indicators,omitempty"`
	Categories            []string `json:"categories,omitempty"`
}

// ComponentRisks are the 0-100 risk scores per component before
// weighting.
type ComponentRisks struct {
	Identity     float64 `json:"identity"`
	Address      float64 `json:"address"`
	Authenticity float64 `json:"authenticity"`
	Consistency  float64 `json:"consistency"`
	Fraud        float64 `json:"fraud"`
}

type Output struct {
	ApplicationID                string                `json:"applicationId"`
	Identity                     VerificationResult    `json:"identityVerification"`
	Address                      VerificationResult    `json:"addressVerification"`
	Authenticity                 AuthenticityResult    `json:"documentAuthenticity"`
	Consistency                  ConsistencyResult     `json:"dataConsistency"`
	Fraud                        FraudResult           `json:"fraudDetection"`
	ComponentRisks               ComponentRisks        `json:"componentRisks"`
	OverallRiskScore             float64               `json:"overallRiskScore"`
	RiskLevel                    models.RiskLevel      `json:"riskLevel"`
	RiskFactors                  []string              `json:"riskFactors"`
	RequiresEnhancedVerification bool                  `json:"requiresEnhancedVerification"`
	PEPSanctionsClear            bool                  `json:"pepSanctionsClear"`
	RegulatoryComplianceStatus   bool                  `json:"regulatoryComplianceStatus"`
	Confidence                   float64               `json:"confidence"`
	Result                       models.CategoryResult `json:"kycResult"`
}
