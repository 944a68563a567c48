// internal/programs/kyc.go
package programs

import "mortgage-workers/internal/models"

// Component weights for the KYC risk composite. The overall score takes
// the maximum weighted contribution, normalized to the dominant weight,
// so correlated failures are not double counted.
const (
	KYCWeightIdentity     = 0.30
	KYCWeightAddress      = 0.25
	KYCWeightAuthenticity = 0.25
	KYCWeightConsistency  = 0.15
	KYCWeightFraud        = 0.05
)

// KYC risk level thresholds on the 0-100 overall score.
const (
	KYCMediumRiskThreshold        = 30.0
	KYCHighRiskThreshold          = 60.0
	EnhancedVerificationThreshold = 80.0
)

// Per-document and overall acceptance thresholds for cross-document
// matching.
const (
	NameMatchThreshold          = 0.85
	AddressMatchThreshold       = 0.80
	IdentityConfidenceThreshold = 0.75
	AddressConfidenceThreshold  = 0.75
	AddressDocumentMaxAgeDays   = 90
)

// Identity confidence blend: name and SSN carry equal weight, date of
// birth the remainder.
const (
	IdentityNameWeight = 0.4
	IdentitySSNWeight  = 0.4
	IdentityDOBWeight  = 0.2
)

// authenticityBaseScores map the intake validation tag to a baseline
// authenticity score.
var authenticityBaseScores = map[models.ValidationStatus]float64{
	models.ValidationStatusValid:   0.90,
	models.ValidationStatusWarning: 0.70,
	models.ValidationStatusInvalid: 0.30,
	models.ValidationStatusUnknown: 0.60,
}

// AuthenticityBaseScore returns the baseline authenticity score for a
// validation tag. Missing tags read as unknown.
func AuthenticityBaseScore(status models.ValidationStatus) float64 {
	if score, ok := authenticityBaseScores[status]; ok {
		return score
	}
	return authenticityBaseScores[models.ValidationStatusUnknown]
}

// Authenticity confidence bands.
const (
	AuthenticityHighConfidence   = 0.90
	AuthenticityMediumConfidence = 0.70
	AuthenticityLowConfidence    = 0.50
	SuspiciousDocumentThreshold  = 0.60
)

// Data consistency deductions from the 100-point starting score.
const (
	NameVariationDeduction    = 10.0
	AddressVariationDeduction = 15.0
	IncomeMajorDeduction      = 20.0
	IncomeMinorDeduction      = 10.0
	PhoneVariationDeduction   = 8.0
)

// Income variance bands for the consistency check.
const (
	IncomeVarianceMajor = 0.20
	IncomeVarianceMinor = 0.10
)

// Fraud risk score multipliers: synthetic identity scales to 40 points,
// identity theft contributes a flat 30, each suspicious document 10.
const (
	SyntheticIdentityPoints = 40.0
	IdentityTheftPoints     = 30.0
	DocumentFraudPoints     = 10.0
)

// Document types carrying identity evidence versus address evidence.
var (
	IdentityDocumentTypes = map[string]bool{
		"drivers_license":   true,
		"passport":          true,
		"state_id":          true,
		"ssn_card":          true,
		"birth_certificate": true,
	}
	AddressDocumentTypes = map[string]bool{
		"utility_bill":       true,
		"bank_statement":     true,
		"lease_agreement":    true,
		"mortgage_statement": true,
	}
)
