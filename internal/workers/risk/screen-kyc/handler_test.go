// internal/workers/risk/screen-kyc/handler_test.go
package screenkyc

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.t.Logf("DEBUG: %s %v", msg, fields) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *testLogger) WithFields(fields map[string]interface{}) logger.Logger { return l }
func (l *testLogger) WithError(err error) logger.Logger                      { return l }
func (l *testLogger) With(fields map[string]interface{}) logger.Logger       { return l }

// stubScreening flags subjects whose name appears in its match set.
type stubScreening struct {
	sanctioned map[string]bool
	pepLevel   string
	err        error
}

func (s stubScreening) SanctionsMatches(_ context.Context, list string, subject providers.ScreeningSubject) ([]providers.ScreeningMatch, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sanctioned[subject.FullName] {
		return []providers.ScreeningMatch{{ListName: list, MatchedOn: subject.FullName, Score: 100}}, nil
	}
	return nil, nil
}

func (s stubScreening) PEPStatus(_ context.Context, _ providers.ScreeningSubject) (bool, string, error) {
	return s.pepLevel != "", s.pepLevel, nil
}

func (s stubScreening) WatchlistMatches(_ context.Context, _ string, _ providers.ScreeningSubject) ([]providers.ScreeningMatch, error) {
	return nil, nil
}

func (s stubScreening) Lists() []string {
	return []string{"OFAC_SDN"}
}

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), &testLogger{t: t})
}

func recentDate() string {
	return time.Now().AddDate(0, -1, 0).Format("2006-01-02")
}

func createTestInput() *Input {
	return &Input{
		ApplicationID: "APP-2024-001",
		Borrower: models.BorrowerInfo{
			Name:           "John Michael Smith",
			SSN:            "123-45-6789",
			DateOfBirth:    "1985-03-15",
			PhoneNumber:    "512-555-0143",
			CurrentAddress: "123 Main St Austin TX 78701",
			AnnualIncome:   120000,
		},
		VerifiedAnnualIncome: 118000,
		Documents: []models.DocumentRecord{
			{
				DocumentID:       "DOC-1",
				DocumentType:     "drivers_license",
				ValidationStatus: models.ValidationStatusValid,
				ExtractedData: map[string]interface{}{
					"name":        "John Michael Smith",
					"ssn":         "123-45-6789",
					"dateOfBirth": "1985-03-15",
				},
			},
			{
				DocumentID:       "DOC-2",
				DocumentType:     "passport",
				ValidationStatus: models.ValidationStatusValid,
				ExtractedData: map[string]interface{}{
					"name":        "John Michael Smith",
					"dateOfBirth": "03/15/1985",
				},
			},
			{
				DocumentID:       "DOC-3",
				DocumentType:     "utility_bill",
				ValidationStatus: models.ValidationStatusValid,
				ExtractedData: map[string]interface{}{
					"serviceAddress": "123 Main St Austin TX 78701",
					"billDate":       recentDate(),
				},
			},
		},
	}
}

// ==========================
// Clean File Tests
// ==========================

func TestExecute_CleanFile(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.True(t, output.Identity.Verified)
	assert.Equal(t, 1.0, output.Identity.Confidence)
	assert.True(t, output.Address.Verified)
	assert.Equal(t, 1.0, output.Address.Confidence)
	assert.Equal(t, 0.90, output.Authenticity.OverallScore)
	assert.Equal(t, 100.0, output.Consistency.Score)
	assert.Zero(t, output.Fraud.RiskScore)

	assert.Equal(t, models.RiskLow, output.RiskLevel)
	assert.False(t, output.RequiresEnhancedVerification)
	assert.True(t, output.PEPSanctionsClear)
	assert.True(t, output.RegulatoryComplianceStatus)
	assert.Empty(t, output.RiskFactors)
}

func TestExecute_RequiresBorrowerName(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Borrower.Name = "  "

	_, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

// ==========================
// Identity Verification Tests
// ==========================

func TestVerifyIdentity_WeightedBlend(t *testing.T) {
	borrower := &models.BorrowerInfo{
		Name:        "Jane Doe",
		SSN:         "987-65-4321",
		DateOfBirth: "1990-07-01",
	}
	docs := []models.DocumentRecord{
		{
			DocumentID:   "D1",
			DocumentType: "drivers_license",
			ExtractedData: map[string]interface{}{
				"name":        "Jane Doe",
				"ssn":         "987-65-4321",
				"dateOfBirth": "1990-07-01",
			},
		},
	}

	result := verifyIdentity(borrower, docs)
	assert.True(t, result.Verified)
	assert.Equal(t, 1.0, result.Confidence)
	assert.ElementsMatch(t, []string{"name_verification", "ssn_verification", "dob_verification"}, result.Methods)
}

func TestVerifyIdentity_SSNMismatchDropsConfidence(t *testing.T) {
	borrower := &models.BorrowerInfo{
		Name:        "Jane Doe",
		SSN:         "987-65-4321",
		DateOfBirth: "1990-07-01",
	}
	docs := []models.DocumentRecord{
		{
			DocumentID:   "D1",
			DocumentType: "drivers_license",
			ExtractedData: map[string]interface{}{
				"name":        "Jane Doe",
				"ssn":         "111-22-3333",
				"dateOfBirth": "1990-07-01",
			},
		},
	}

	result := verifyIdentity(borrower, docs)
	// name 1.0*0.4 + ssn 0*0.4 + dob 1.0*0.2
	assert.Equal(t, 0.6, result.Confidence)
	assert.False(t, result.Verified)
	assert.Contains(t, result.Issues, "SSN verification failed")
}

func TestVerifyIdentity_NoDocuments(t *testing.T) {
	result := verifyIdentity(&models.BorrowerInfo{Name: "Jane Doe"}, nil)
	assert.False(t, result.Verified)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Issues, "No identity documents provided")
}

// ==========================
// Address Verification Tests
// ==========================

func TestVerifyAddress_StaleDocumentFlagged(t *testing.T) {
	borrower := &models.BorrowerInfo{CurrentAddress: "123 Main St Austin TX"}
	docs := []models.DocumentRecord{
		{
			DocumentID:   "D1",
			DocumentType: "utility_bill",
			ExtractedData: map[string]interface{}{
				"serviceAddress": "123 Main St Austin TX",
				"billDate":       time.Now().AddDate(0, -6, 0).Format("2006-01-02"),
			},
		},
	}

	result := verifyAddress(borrower, docs)
	assert.True(t, result.Verified)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "days old")
}

func TestVerifyAddress_DifferentAddressFails(t *testing.T) {
	borrower := &models.BorrowerInfo{CurrentAddress: "123 Main St Austin TX"}
	docs := []models.DocumentRecord{
		{
			DocumentID:   "D1",
			DocumentType: "bank_statement",
			ExtractedData: map[string]interface{}{
				"address": "900 Oak Ave Dallas TX",
			},
		},
	}

	result := verifyAddress(borrower, docs)
	assert.False(t, result.Verified)
	assert.Contains(t, result.Issues, "Address verification failed across all documents")
}

// ==========================
// Authenticity Tests
// ==========================

func TestAssessAuthenticity_ValidationStatusScores(t *testing.T) {
	docs := []models.DocumentRecord{
		{DocumentID: "A", ValidationStatus: models.ValidationStatusValid, ExtractedData: map[string]interface{}{"name": "x"}},
		{DocumentID: "B", ValidationStatus: models.ValidationStatusWarning, ExtractedData: map[string]interface{}{"name": "x"}},
		{DocumentID: "C", ValidationStatus: models.ValidationStatusInvalid, ExtractedData: map[string]interface{}{"name": "x"}},
		{DocumentID: "D", ValidationStatus: models.ValidationStatusUnknown, ExtractedData: map[string]interface{}{"name": "x"}},
	}

	result := assessAuthenticity(docs)
	assert.Equal(t, 0.90, result.DocumentScores["A"])
	assert.Equal(t, 0.70, result.DocumentScores["B"])
	assert.Equal(t, 0.30, result.DocumentScores["C"])
	assert.Equal(t, 0.60, result.DocumentScores["D"])
	assert.Equal(t, 0.625, result.OverallScore)
	assert.Equal(t, []string{"C"}, result.SuspiciousDocuments)
}

func TestAssessAuthenticity_EmptyExtractionCapsAtUnknown(t *testing.T) {
	docs := []models.DocumentRecord{
		{DocumentID: "A", ValidationStatus: models.ValidationStatusValid},
	}
	result := assessAuthenticity(docs)
	assert.Equal(t, 0.60, result.DocumentScores["A"])
}

// ==========================
// Consistency Tests
// ==========================

func TestCheckConsistency_Deductions(t *testing.T) {
	input := createTestInput()
	input.Borrower.AnnualIncome = 120000
	input.VerifiedAnnualIncome = 90000 // 25% variance
	input.Documents[0].ExtractedData["name"] = "Jonathan M Smith"
	input.Documents[0].ExtractedData["phoneNumber"] = "512-555-9999"
	input.Documents[2].ExtractedData["serviceAddress"] = "500 Elm St Houston TX"

	identityDocs, addressDocs := splitDocuments(input.Documents)
	result := checkConsistency(input, identityDocs, addressDocs)

	// 100 - 10 name - 15 address - 20 income - 8 phone
	assert.Equal(t, 47.0, result.Score)
	assert.Len(t, result.Inconsistencies, 4)
}

func TestCheckConsistency_CleanFileKeepsFullScore(t *testing.T) {
	input := createTestInput()
	identityDocs, addressDocs := splitDocuments(input.Documents)
	result := checkConsistency(input, identityDocs, addressDocs)
	assert.Equal(t, 100.0, result.Score)
	assert.Empty(t, result.Inconsistencies)
}

// ==========================
// Fraud Detection Tests
// ==========================

func TestDetectFraud_SyntheticIdentitySignals(t *testing.T) {
	borrower := &models.BorrowerInfo{
		Name:        "Jane Doe",
		SSN:         "000-12-3456",
		PhoneNumber: "555-555-5555",
	}
	identity := VerificationResult{Verified: true, Confidence: 1.0}
	address := VerificationResult{Verified: false}
	authenticity := AuthenticityResult{OverallScore: 0.90}

	result := detectFraud(borrower, identity, address, authenticity)
	assert.Equal(t, 1.0, result.SyntheticIdentityRisk)
	assert.Contains(t, result.Categories, "synthetic_identity")
	assert.Equal(t, 40.0, result.RiskScore)
}

func TestDetectFraud_IdentityTheftSignals(t *testing.T) {
	borrower := &models.BorrowerInfo{Name: "Jane Doe", SSN: "123-45-6789"}
	identity := VerificationResult{
		Verified: false,
		Issues:   []string{"Name verification failed across all documents"},
	}
	address := VerificationResult{Verified: true}
	authenticity := AuthenticityResult{
		OverallScore:   0.30,
		DocumentScores: map[string]float64{"D1": 0.30},
	}

	result := detectFraud(borrower, identity, address, authenticity)
	assert.True(t, result.IdentityTheftRisk)
	assert.Contains(t, result.Categories, "identity_theft")
	assert.Contains(t, result.Categories, "document_fraud")
	// theft 30 + one suspicious document 10
	assert.Equal(t, 40.0, result.RiskScore)
}

func TestInvalidSSNPattern(t *testing.T) {
	tests := []struct {
		ssn      string
		expected bool
	}{
		{"123456789", false},
		{"", false},
		{"000123456", true},
		{"666123456", true},
		{"912345678", true},
		{"123004567", true},
		{"123450000", true},
		{"111111111", true},
		{"12345", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, invalidSSNPattern(tt.ssn), "ssn %q", tt.ssn)
	}
}

func TestSuspiciousPhonePattern(t *testing.T) {
	assert.True(t, suspiciousPhonePattern("5555555555"))
	assert.True(t, suspiciousPhonePattern("1234567890"))
	assert.False(t, suspiciousPhonePattern("5125550143"))
	assert.False(t, suspiciousPhonePattern("555"))
}

// ==========================
// Overall Risk Aggregation Tests
// ==========================

func TestOverallRisk_MaxNotSum(t *testing.T) {
	// both identity and address fully failed: correlated signals must
	// not stack
	correlated := ComponentRisks{Identity: 100, Address: 100}
	assert.Equal(t, 100.0, overallRisk(correlated))

	// a lone fraud signal is dampened by its small weight
	fraudOnly := ComponentRisks{Fraud: 100}
	assert.InDelta(t, 16.67, overallRisk(fraudOnly), 0.01)

	clean := ComponentRisks{}
	assert.Zero(t, overallRisk(clean))
}

func TestRiskLevelBands(t *testing.T) {
	assert.Equal(t, models.RiskLow, riskLevel(29.9))
	assert.Equal(t, models.RiskMedium, riskLevel(30))
	assert.Equal(t, models.RiskMedium, riskLevel(59.9))
	assert.Equal(t, models.RiskHigh, riskLevel(60))
}

// ==========================
// Sanctions Gate Tests
// ==========================

func TestExecute_SanctionsMatchBlocksCompliance(t *testing.T) {
	handler := NewHandlerWithProvider(createTestConfig(), &testLogger{t: t},
		stubScreening{sanctioned: map[string]bool{"John Michael Smith": true}})

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.False(t, output.PEPSanctionsClear)
	assert.False(t, output.RegulatoryComplianceStatus)
	assert.Contains(t, output.Result.Recommendations,
		"Escalate to compliance for sanctions and PEP review")
}

func TestExecute_HighLevelPEPBlocksClear(t *testing.T) {
	handler := NewHandlerWithProvider(createTestConfig(), &testLogger{t: t},
		stubScreening{pepLevel: "high"})

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.False(t, output.PEPSanctionsClear)
}

func TestExecute_LowLevelPEPStaysClear(t *testing.T) {
	handler := NewHandlerWithProvider(createTestConfig(), &testLogger{t: t},
		stubScreening{pepLevel: "low"})

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.True(t, output.PEPSanctionsClear)
	assert.True(t, output.RegulatoryComplianceStatus)
}

func TestExecute_ScreeningProviderErrorIsRetryable(t *testing.T) {
	handler := NewHandlerWithProvider(createTestConfig(), &testLogger{t: t},
		stubScreening{err: stderrors.New("watchlist service unavailable")})

	_, err := handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeScreeningFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

// ==========================
// Similarity Helper Tests
// ==========================

func TestTokenSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, tokenSimilarity("john smith", "john smith"))
	assert.InDelta(t, 2.0/3.0, tokenSimilarity("john michael smith", "john smith"), 0.0001)
	assert.Zero(t, tokenSimilarity("john smith", "jane doe"))
	assert.Zero(t, tokenSimilarity("", "john"))
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkExecute(b *testing.B) {
	handler := NewHandler(createTestConfig(), logger.NewNoOpLogger())
	input := createTestInput()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.Execute(context.Background(), input)
	}
}
