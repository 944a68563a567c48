// internal/workers/credit/calculate-dti/handler.go
package calculatedti

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/programs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-dti"
)

// Installment debts with this many or fewer remaining payments are
// excluded from DTI.
const shortDebtRemainingMonths = 10

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "DTI_CALCULATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.MonthlyIncome <= 0 {
		return nil, errors.NewValidationError(
			"monthlyIncome",
			fmt.Sprintf("monthly income must be positive, got %.2f", input.MonthlyIncome),
		)
	}

	program := input.Program
	if program == "" {
		program = models.LoanProgramConventional
	}
	limits, ok := programs.DTILimits(program)
	if !ok {
		return nil, errors.NewUnknownLoanProgramError(string(program))
	}

	housing := h.housingPayment(input)
	existingDebts := countableDebts(input.Debts)

	var totalDebt, largest float64
	breakdown := DebtBreakdown{}
	var revolvingTotal float64
	var largePayments int
	for _, debt := range existingDebts {
		totalDebt += debt.MonthlyPayment
		if debt.MonthlyPayment > largest {
			largest = debt.MonthlyPayment
		}
		if debt.MonthlyPayment > 500 {
			largePayments++
		}
		switch categorizeDebt(debt) {
		case "revolving":
			breakdown.Revolving += debt.MonthlyPayment
			revolvingTotal += debt.MonthlyPayment
		case "installment":
			breakdown.Installment += debt.MonthlyPayment
		case "mortgage":
			breakdown.Mortgage += debt.MonthlyPayment
		default:
			breakdown.Other += debt.MonthlyPayment
		}
	}

	var concentration float64
	if totalDebt > 0 {
		concentration = round4(largest / totalDebt)
	}

	housingDTI := round4(housing / input.MonthlyIncome)
	totalDTI := round4((totalDebt + housing) / input.MonthlyIncome)
	backendDTI := round4(totalDebt / input.MonthlyIncome)

	compliance := complianceStatus(totalDTI, housingDTI, limits)
	riskScore := h.riskScore(totalDTI, housingDTI, existingDebts, concentration, largePayments, revolvingTotal, input.MonthlyIncome)
	bucket := riskBucket(riskScore)

	issues := []string{}
	if totalDTI > 1.0 {
		issues = append(issues, "total DTI exceeds 100% of income")
	}
	if housingDTI > 0.50 {
		issues = append(issues, "housing payment exceeds 50% of income")
	}
	if totalDebt+housing > input.MonthlyIncome*0.80 {
		issues = append(issues, "total payments exceed 80% of income")
	}

	requiresVerification := totalDTI > 0.45 ||
		len(issues) > 0 ||
		len(existingDebts) > 8 ||
		concentration > 0.6

	output := &Output{
		ApplicationID:        input.ApplicationID,
		HousingDTI:           housingDTI,
		TotalDTI:             totalDTI,
		BackendDTI:           backendDTI,
		HousingPayment:       round2(housing),
		TotalMonthlyDebt:     round2(totalDebt),
		DebtBreakdown:        breakdown,
		ConcentrationRatio:   concentration,
		ComplianceStatus:     compliance,
		RiskScore:            riskScore,
		RiskBucket:           bucket,
		PaymentShock:         paymentShock(input.CurrentHousingPayment, housing),
		Issues:               issues,
		RequiresVerification: requiresVerification,
		Result:               buildCategoryResult(totalDTI, riskScore, bucket, compliance, issues),
	}

	h.logger.Info("dti calculated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"totalDti":      totalDTI,
		"housingDti":    housingDTI,
		"compliance":    compliance,
		"riskBucket":    bucket,
	})

	return output, nil
}

// housingPayment resolves the proposed housing payment: explicit value
// first, then a PITI estimate from the loan amount, then the standard
// housing ratio of income.
func (h *Handler) housingPayment(input *Input) float64 {
	if input.ProposedHousingPayment > 0 {
		return input.ProposedHousingPayment
	}
	if input.LoanAmount > 0 {
		pi := amortizedPayment(input.LoanAmount, programs.AssumedNoteRate, 360)
		return pi * programs.PITIFactor
	}
	return input.MonthlyIncome * programs.FallbackHousingRatio
}

// amortizedPayment is the standard fixed-rate mortgage payment formula.
func amortizedPayment(principal, annualRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	monthlyRate := annualRate / 12
	if monthlyRate == 0 {
		return principal / float64(months)
	}
	factor := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * factor / (factor - 1)
}

// countableDebts drops the proposed mortgage and near-payoff installment
// debts before ratio math.
func countableDebts(debts []models.DebtObligationEntry) []models.DebtObligationEntry {
	result := make([]models.DebtObligationEntry, 0, len(debts))
	for _, debt := range debts {
		if debt.DebtType == models.DebtProposedMortgage {
			continue
		}
		if !debt.IsRevolving && debt.RemainingMonths > 0 && debt.RemainingMonths <= shortDebtRemainingMonths {
			continue
		}
		result = append(result, debt)
	}
	return result
}

func categorizeDebt(debt models.DebtObligationEntry) string {
	typeName := strings.ToLower(string(debt.DebtType))
	for _, category := range []string{"mortgage", "revolving", "installment"} {
		for _, keyword := range programs.DebtCategoryKeywords[category] {
			if strings.Contains(typeName, keyword) {
				return category
			}
		}
	}
	if debt.IsRevolving {
		return "revolving"
	}
	return "other"
}

func complianceStatus(totalDTI, housingDTI float64, limits programs.DTIThresholds) string {
	switch {
	case totalDTI <= limits.PreferredTotal && housingDTI <= limits.MaxHousing:
		return "preferred"
	case totalDTI <= limits.MaxTotal:
		return "acceptable"
	default:
		return "non_compliant"
	}
}

// riskScore builds the additive debt-structure risk score.
func (h *Handler) riskScore(totalDTI, housingDTI float64, debts []models.DebtObligationEntry,
	concentration float64, largePayments int, revolvingTotal, income float64) float64 {

	var score float64

	switch {
	case totalDTI >= 0.50:
		score += 40
	case totalDTI >= 0.43:
		score += 25
	case totalDTI >= 0.36:
		score += 15
	default:
		score += 5
	}

	switch {
	case housingDTI >= 0.35:
		score += 20
	case housingDTI >= 0.31:
		score += 10
	}

	if len(debts) > 10 {
		score += 10
	}
	if concentration > 0.6 {
		score += 8
	}
	if largePayments > 2 {
		score += 5
	}
	if revolvingTotal > income*0.15 {
		score += 10
	}

	return math.Min(score, 100)
}

func riskBucket(score float64) string {
	switch {
	case score >= 50:
		return "high"
	case score >= 30:
		return "elevated"
	case score >= 15:
		return "moderate"
	default:
		return "low"
	}
}

// paymentShock bands the relative increase over the current housing
// payment. Empty when no current payment is known.
func paymentShock(current, proposed float64) string {
	if current <= 0 {
		return ""
	}
	increase := (proposed - current) / current
	switch {
	case increase >= 0.15:
		return "high"
	case increase >= 0.10:
		return "moderate"
	case increase >= 0.05:
		return "low"
	default:
		return "minimal"
	}
}

func buildCategoryResult(totalDTI, riskScore float64, bucket, compliance string, issues []string) models.CategoryResult {
	level := models.RiskLow
	switch bucket {
	case "moderate":
		level = models.RiskMedium
	case "elevated", "high":
		level = models.RiskHigh
	}

	result := models.NewCategoryResult("dti", riskScore, level)
	result.Indicators = append(result.Indicators,
		fmt.Sprintf("total DTI %.2f%% (%s)", totalDTI*100, compliance))
	result.Indicators = append(result.Indicators, issues...)

	switch compliance {
	case "non_compliant":
		result.Recommendations = append(result.Recommendations,
			"Reduce monthly debt obligations to meet program DTI limits")
	case "acceptable":
		result.Recommendations = append(result.Recommendations,
			"Consider paying down revolving balances to reach preferred DTI")
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
