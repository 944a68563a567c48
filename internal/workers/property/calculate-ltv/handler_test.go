// internal/workers/property/calculate-ltv/handler_test.go
package calculateltv

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
		ApplicationID:  "APP-2024-001",
		LoanAmount:     320000,
		AppraisedValue: 400000,
		DownPayment:    80000,
		Program:        models.LoanProgramConventional,
		Purpose:        models.LoanPurposePurchase,
	}
}

// ==========================
// Ratio Tests
// ==========================

func TestExecute_BasicLTV(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, 0.80, output.LTV)
	assert.Equal(t, 0.80, output.CLTV)
	assert.Equal(t, 80000.0, output.Equity)
	assert.Equal(t, 0.20, output.EquityRatio)
	assert.True(t, output.WithinProgramMax)
	assert.Equal(t, models.RiskMedium, output.RiskLevel)
}

func TestExecute_CLTVIncludesSubordinateLiens(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.SubordinateLiens = 40000

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 0.80, output.LTV)
	assert.Equal(t, 0.90, output.CLTV)
	assert.Equal(t, 40000.0, output.Equity)
}

func TestExecute_LTVBounds(t *testing.T) {
	handler := createTestHandler(t)

	for _, tt := range []struct {
		loan  float64
		value float64
	}{
		{100000, 400000},
		{400000, 400000},
		{450000, 400000},
	} {
		input := createTestInput()
		input.LoanAmount = tt.loan
		input.AppraisedValue = tt.value

		output, err := handler.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.Greater(t, output.LTV, 0.0)
		assert.InDelta(t, tt.loan/tt.value, output.LTV, 0.0001)
	}
}

func TestExecute_ValidationFailures(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero appraised value", func(i *Input) { i.AppraisedValue = 0 }},
		{"negative appraised value", func(i *Input) { i.AppraisedValue = -100 }},
		{"negative loan amount", func(i *Input) { i.LoanAmount = -50000 }},
		{"unknown program", func(i *Input) { i.Program = "balloon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)
			_, err := handler.Execute(context.Background(), input)
			assert.Error(t, err)
		})
	}
}

func TestExecute_ZeroLoanAmountYieldsZeroLTV(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.LoanAmount = 0

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Zero(t, output.LTV)
	assert.True(t, output.WithinProgramMax)
	assert.Equal(t, input.AppraisedValue, output.Equity)
}

func TestCollateralValue_LesserOfAppraisalAndPrice(t *testing.T) {
	input := createTestInput()
	input.PurchasePrice = 380000

	assert.Equal(t, 380000.0, collateralValue(input, models.LoanPurposePurchase))
	assert.Equal(t, 400000.0, collateralValue(input, models.LoanPurposeRefinance))
}

// ==========================
// Program Ceiling Tests
// ==========================

func TestExecute_ProgramCeilings(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		name      string
		program   models.LoanProgram
		purpose   models.LoanPurpose
		ltv       float64
		withinMax bool
	}{
		{"conventional at max", models.LoanProgramConventional, models.LoanPurposePurchase, 0.97, true},
		{"conventional over max", models.LoanProgramConventional, models.LoanPurposePurchase, 0.975, false},
		{"conventional cash-out capped", models.LoanProgramConventional, models.LoanPurposeCashOut, 0.96, false},
		{"jumbo cash-out capped at 70", models.LoanProgramJumbo, models.LoanPurposeCashOut, 0.75, false},
		{"fha refinance allows 97.5", models.LoanProgramFHA, models.LoanPurposeRefinance, 0.97, true},
		{"va full financing", models.LoanProgramVA, models.LoanPurposePurchase, 1.00, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			input.Program = tt.program
			input.Purpose = tt.purpose
			input.AppraisedValue = 400000
			input.LoanAmount = 400000 * tt.ltv

			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, tt.withinMax, output.WithinProgramMax)
		})
	}
}

// ==========================
// Mortgage Insurance Tests
// ==========================

func TestExecute_PMIStrictBoundary(t *testing.T) {
	handler := createTestHandler(t)

	atBoundary := createTestInput()
	atBoundary.LoanAmount = 320000 // exactly 80%
	output, err := handler.Execute(context.Background(), atBoundary)
	require.NoError(t, err)
	assert.False(t, output.MortgageInsurance.Required,
		"exactly 80% LTV must not trigger PMI")

	overBoundary := createTestInput()
	overBoundary.LoanAmount = 320100
	output, err = handler.Execute(context.Background(), overBoundary)
	require.NoError(t, err)
	assert.True(t, output.MortgageInsurance.Required)
	assert.Equal(t, 0.0045, output.MortgageInsurance.AnnualRate)
	assert.InDelta(t, 320100*0.0045/12, output.MortgageInsurance.MonthlyPremium, 0.01)
	assert.Equal(t, 0.78, output.MortgageInsurance.RemovalLTV)
}

func TestExecute_PMIRateBands(t *testing.T) {
	handler := createTestHandler(t)

	tests := []struct {
		ltv  float64
		rate float64
	}{
		{0.84, 0.0045},
		{0.88, 0.0055},
		{0.93, 0.0070},
		{0.96, 0.0085},
	}

	for _, tt := range tests {
		input := createTestInput()
		input.AppraisedValue = 400000
		input.LoanAmount = 400000 * tt.ltv

		output, err := handler.Execute(context.Background(), input)
		require.NoError(t, err)
		require.True(t, output.MortgageInsurance.Required)
		assert.Equal(t, tt.rate, output.MortgageInsurance.AnnualRate, "ltv %.2f", tt.ltv)
	}
}

func TestExecute_GovernmentProgramsNoPMI(t *testing.T) {
	handler := createTestHandler(t)

	for _, program := range []models.LoanProgram{models.LoanProgramVA, models.LoanProgramUSDA} {
		input := createTestInput()
		input.Program = program
		input.LoanAmount = 380000 // 95% LTV

		output, err := handler.Execute(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, output.MortgageInsurance.Required, "program %s", program)
	}
}

func TestExecute_FHAMIPNoRemoval(t *testing.T) {
	handler := createTestHandler(t)

	input := createTestInput()
	input.Program = models.LoanProgramFHA
	input.LoanAmount = 380000

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, output.MortgageInsurance.Required)
	assert.Zero(t, output.MortgageInsurance.RemovalLTV)
}

// ==========================
// Down Payment Tests
// ==========================

func TestExecute_DownPaymentAnalysis(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	dp := output.DownPayment
	assert.Equal(t, 0.20, dp.Ratio)
	assert.Equal(t, 12000.0, dp.MinimumRequired)
	assert.True(t, dp.MeetsMinimum)
	assert.True(t, dp.MeetsRecommended)

	thin := createTestInput()
	thin.DownPayment = 8000
	output, err = handler.Execute(context.Background(), thin)
	require.NoError(t, err)
	assert.False(t, output.DownPayment.MeetsMinimum)
	assert.Contains(t, output.Result.Recommendations, "Down payment below program minimum")
}

// ==========================
// Red Flag Tests
// ==========================

func TestExecute_RedFlags(t *testing.T) {
	handler := createTestHandler(t)

	underwater := createTestInput()
	underwater.LoanAmount = 420000
	output, err := handler.Execute(context.Background(), underwater)
	require.NoError(t, err)
	assert.Contains(t, output.RedFlags, "loan amount exceeds collateral value")
	assert.Equal(t, models.RiskVeryHigh, output.RiskLevel)
	assert.False(t, output.WithinProgramMax)

	lowAppraisal := createTestInput()
	lowAppraisal.PurchasePrice = 450000
	output, err = handler.Execute(context.Background(), lowAppraisal)
	require.NoError(t, err)
	assert.Contains(t, output.RedFlags, "appraisal more than 5% below purchase price")
}

func TestExecute_CleanFileHasNoRedFlags(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Empty(t, output.RedFlags)
	assert.NotNil(t, output.Result.Indicators)
	assert.NotNil(t, output.Result.Recommendations)
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
