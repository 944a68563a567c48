// internal/workers/credit/calculate-dti/handler_test.go
package calculatedti

import (
	"context"
	"testing"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

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

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(createTestConfig(), &testLogger{t: t})
}

func createTestInput() *Input {
	return &Input{
		ApplicationID:          "APP-2024-001",
		MonthlyIncome:          10000,
		ProposedHousingPayment: 2500,
		Program:                models.LoanProgramConventional,
		Debts: []models.DebtObligationEntry{
			{DebtType: models.DebtCreditCard, Creditor: "Visa", MonthlyPayment: 200, IsRevolving: true},
			{DebtType: models.DebtAutoLoan, Creditor: "Ally", MonthlyPayment: 450, RemainingMonths: 48},
			{DebtType: models.DebtStudentLoan, Creditor: "Navient", MonthlyPayment: 350, RemainingMonths: 120},
		},
	}
}

// ==========================
// Ratio Calculation Tests
// ==========================

func TestExecute_BasicRatios(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	// housing 2500/10000, total (2500+1000)/10000, backend 1000/10000
	assert.Equal(t, 0.25, output.HousingDTI)
	assert.Equal(t, 0.35, output.TotalDTI)
	assert.Equal(t, 0.10, output.BackendDTI)
	assert.Equal(t, 1000.0, output.TotalMonthlyDebt)
	assert.Equal(t, "preferred", output.ComplianceStatus)
}

func TestExecute_RejectsNonPositiveIncome(t *testing.T) {
	handler := createTestHandler(t)

	for _, income := range []float64{0, -500} {
		input := createTestInput()
		input.MonthlyIncome = income

		_, err := handler.Execute(context.Background(), input)
		assert.Error(t, err)
	}
}

func TestExecute_UnknownProgramFails(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Program = models.LoanProgram("reverse_mortgage")

	_, err := handler.Execute(context.Background(), input)
	assert.Error(t, err)
}

func TestExecute_DTIMonotonicInDebt(t *testing.T) {
	handler := createTestHandler(t)

	previous := -1.0
	for _, payment := range []float64{0, 300, 800, 1500, 3000} {
		input := createTestInput()
		input.Debts = []models.DebtObligationEntry{
			{DebtType: models.DebtPersonalLoan, MonthlyPayment: payment, RemainingMonths: 60},
		}

		output, err := handler.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.Greater(t, output.TotalDTI, previous,
			"total DTI must strictly increase with added debt payment %.0f", payment)
		previous = output.TotalDTI
	}
}

// ==========================
// Debt Filtering Tests
// ==========================

func TestExecute_ExcludesProposedMortgage(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Debts = append(input.Debts, models.DebtObligationEntry{
		DebtType:       models.DebtProposedMortgage,
		MonthlyPayment: 2500,
	})

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, output.TotalMonthlyDebt)
}

func TestExecute_ExcludesNearPayoffInstallments(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Debts = []models.DebtObligationEntry{
		{DebtType: models.DebtAutoLoan, MonthlyPayment: 400, RemainingMonths: 8},
		{DebtType: models.DebtAutoLoan, MonthlyPayment: 400, RemainingMonths: 11},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 400.0, output.TotalMonthlyDebt,
		"installment with 8 payments left should be excluded")
}

func TestExecute_RevolvingNeverExcludedByRemainingMonths(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Debts = []models.DebtObligationEntry{
		{DebtType: models.DebtCreditCard, MonthlyPayment: 150, RemainingMonths: 3, IsRevolving: true},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 150.0, output.TotalMonthlyDebt)
}

func TestExecute_DebtBreakdownCategories(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Debts = []models.DebtObligationEntry{
		{DebtType: models.DebtCreditCard, MonthlyPayment: 100, IsRevolving: true},
		{DebtType: models.DebtHELOC, MonthlyPayment: 250, IsRevolving: true},
		{DebtType: models.DebtAutoLoan, MonthlyPayment: 300, RemainingMonths: 48},
		{DebtType: models.DebtMortgage, MonthlyPayment: 1200, RemainingMonths: 240},
		{DebtType: models.DebtType("alimony"), MonthlyPayment: 500, RemainingMonths: 36},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 350.0, output.DebtBreakdown.Revolving)
	assert.Equal(t, 300.0, output.DebtBreakdown.Installment)
	assert.Equal(t, 1200.0, output.DebtBreakdown.Mortgage)
	assert.Equal(t, 500.0, output.DebtBreakdown.Other)
}

// ==========================
// Housing Payment Fallback Tests
// ==========================

func TestHousingPayment_FallbackChain(t *testing.T) {
	handler := createTestHandler(t)

	explicit := createTestInput()
	assert.Equal(t, 2500.0, handler.housingPayment(explicit))

	estimated := createTestInput()
	estimated.ProposedHousingPayment = 0
	estimated.LoanAmount = 400000
	payment := handler.housingPayment(estimated)
	// 400k at 7% over 360 months: P&I about 2661, times PITI factor 1.3
	assert.InDelta(t, 3460, payment, 10)

	ratio := createTestInput()
	ratio.ProposedHousingPayment = 0
	ratio.LoanAmount = 0
	assert.InDelta(t, 2800, handler.housingPayment(ratio), 0.01)
}

func TestAmortizedPayment(t *testing.T) {
	// 300k at 6% over 30 years is a well-known 1798.65
	assert.InDelta(t, 1798.65, amortizedPayment(300000, 0.06, 360), 0.05)
	assert.Equal(t, 0.0, amortizedPayment(0, 0.06, 360))
	assert.Equal(t, 1000.0, amortizedPayment(120000, 0, 120))
}

// ==========================
// Compliance Threshold Tests
// ==========================

func TestExecute_ComplianceByProgram(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name     string
		program  models.LoanProgram
		housing  float64
		debt     float64
		expected string
	}{
		{"conventional preferred", models.LoanProgramConventional, 2500, 1000, "preferred"},
		{"conventional acceptable", models.LoanProgramConventional, 3000, 1200, "acceptable"},
		{"conventional non-compliant", models.LoanProgramConventional, 3000, 1500, "non_compliant"},
		{"fha allows higher total", models.LoanProgramFHA, 3000, 1500, "acceptable"},
		{"va tighter total limit", models.LoanProgramVA, 2800, 1400, "non_compliant"},
		{"non-qm widest", models.LoanProgramNonQM, 3500, 1400, "acceptable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			input.Program = tt.program
			input.ProposedHousingPayment = tt.housing
			input.Debts = []models.DebtObligationEntry{
				{DebtType: models.DebtPersonalLoan, MonthlyPayment: tt.debt, RemainingMonths: 60},
			}

			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, output.ComplianceStatus)
		})
	}
}

// ==========================
// Risk Scoring Tests
// ==========================

func TestExecute_RiskBuckets(t *testing.T) {
	handler := createTestHandler(t)

	lowInput := createTestInput()
	lowInput.ProposedHousingPayment = 1500
	lowInput.Debts = nil
	low, err := handler.Execute(context.Background(), lowInput)
	require.NoError(t, err)
	assert.Equal(t, "low", low.RiskBucket)
	assert.Equal(t, models.RiskLow, low.Result.RiskLevel)

	highInput := createTestInput()
	highInput.MonthlyIncome = 6000
	highInput.ProposedHousingPayment = 2400
	highInput.Debts = []models.DebtObligationEntry{
		{DebtType: models.DebtCreditCard, MonthlyPayment: 1100, IsRevolving: true},
	}
	high, err := handler.Execute(context.Background(), highInput)
	require.NoError(t, err)
	// total 3500/6000 = .5833 (+40), housing .40 (+20), concentration 1.0 (+8),
	// revolving over 15% of income (+10)
	assert.Equal(t, "high", high.RiskBucket)
	assert.Equal(t, models.RiskHigh, high.Result.RiskLevel)
	assert.True(t, high.RequiresVerification)
}

func TestExecute_IssuesAndVerification(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.MonthlyIncome = 3000
	input.ProposedHousingPayment = 1800
	input.Debts = []models.DebtObligationEntry{
		{DebtType: models.DebtPersonalLoan, MonthlyPayment: 1500, RemainingMonths: 60},
	}

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Contains(t, output.Issues, "total DTI exceeds 100% of income")
	assert.Contains(t, output.Issues, "housing payment exceeds 50% of income")
	assert.Contains(t, output.Issues, "total payments exceed 80% of income")
	assert.True(t, output.RequiresVerification)
	assert.Equal(t, "non_compliant", output.ComplianceStatus)
}

// ==========================
// Payment Shock Tests
// ==========================

func TestPaymentShock(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		proposed float64
		expected string
	}{
		{"no prior payment", 0, 2500, ""},
		{"minimal", 2500, 2550, "minimal"},
		{"low", 2500, 2650, "low"},
		{"moderate", 2500, 2800, "moderate"},
		{"high", 2000, 2500, "high"},
		{"decrease", 3000, 2500, "minimal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, paymentShock(tt.current, tt.proposed))
		})
	}
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
