// internal/workers/underwriting/decide-loan/handler.go
package decideloan

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/metrics"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/programs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "decide-loan"
)

type Handler struct {
	config   *Config
	logger   logger.Logger
	errorHdl *errors.ErrorHandler
	now      func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		logger:   scoped,
		errorHdl: errors.NewErrorHandler(scoped),
		now:      time.Now,
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
		// Aggregation and program failures carry their own codes and
		// retry semantics.
		h.errorHdl.HandleJobError(ctx, client, job, err)
		return
	}

	program := input.Program
	if program == "" {
		program = models.LoanProgramConventional
	}
	metrics.DecisionsIssued.WithLabelValues(
		string(output.Decision.Decision), string(program)).Inc()

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if missing := missingCategories(input); len(missing) > 0 {
		return nil, errors.NewAggregationFailure(missing)
	}

	program := input.Program
	if program == "" {
		program = models.LoanProgramConventional
	}
	if !program.Valid() {
		return nil, errors.NewUnknownLoanProgramError(string(program))
	}

	breakdown := h.scoreApplication(input, program)
	complianceOK := input.RegulatoryCompliance && input.PEPSanctionsClear
	total := math.Min(100, breakdown.Credit+breakdown.DTI+breakdown.LTV+
		breakdown.ProgramBonus+breakdown.Compliance+
		breakdown.IncomeVerification+breakdown.DocumentQuality)

	decision := models.DecisionResult{
		ApplicationID:  input.ApplicationID,
		TotalScore:     total,
		ScoreBreakdown: breakdown,
		Conditions:     []string{},
		DenialReasons:  []string{},
		Confidence:     h.confidence(input),
		DecidedAt:      h.now().UTC().Format(time.RFC3339),
	}

	var rationale string
	switch {
	case !complianceOK:
		// Compliance failure denies regardless of every other score.
		decision.Decision = models.DecisionDeny
		decision.DenialReasons = append(decision.DenialReasons,
			"Regulatory compliance check failed",
			"Sanctions screening concerns identified")
		rationale = "Application denied due to regulatory compliance issues or sanctions concerns."

	case total >= programs.ApproveThreshold:
		decision.Decision = models.DecisionApprove
		rationale = fmt.Sprintf("Application approved with score of %.0f/100. Strong creditworthiness demonstrated.", total)

	case total >= programs.ConditionalThreshold:
		decision.Decision = models.DecisionConditional
		decision.Conditions = h.conditions(breakdown)
		rationale = fmt.Sprintf("Conditional approval with score of %.0f/100. Additional verification required.", total)

	default:
		decision.Decision = models.DecisionDeny
		decision.DenialReasons = h.denialReasons(input)
		rationale = fmt.Sprintf("Application denied with score of %.0f/100. Risk factors exceed acceptable limits.", total)
	}

	denied := decision.Decision == models.DecisionDeny
	decision.RiskGrade, decision.PricingTier = programs.GradeForScore(total, denied)

	if !denied {
		decision.LoanTerms = h.loanTerms(input, program, total)
		decision.ApprovalExpiresAt = h.now().UTC().
			AddDate(0, 0, programs.ApprovalValidDays).Format(time.RFC3339)
	}

	output := &Output{
		ApplicationID:         input.ApplicationID,
		Decision:              decision,
		Rationale:             rationale,
		KeyFactors:            h.keyFactors(input, decision.Decision),
		RiskMitigationFactors: h.riskMitigationFactors(input),
		NextSteps:             nextSteps(decision.Decision, decision.Conditions),
	}

	h.logger.Info("loan decision made", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"decision":      decision.Decision,
		"totalScore":    total,
		"riskGrade":     decision.RiskGrade,
		"pricingTier":   decision.PricingTier,
	})

	return output, nil
}

// missingCategories lists the required category results absent from the
// input. The engine never zero-fills a missing category.
func missingCategories(input *Input) []string {
	var missing []string
	for _, required := range []struct {
		name   string
		result *models.CategoryResult
	}{
		{"credit_score", input.CreditResult},
		{"dti", input.DTIResult},
		{"ltv", input.LTVResult},
		{"property_risk", input.PropertyResult},
		{"kyc", input.KYCResult},
	} {
		if required.result == nil {
			missing = append(missing, required.name)
		}
	}
	return missing
}

func (h *Handler) scoreApplication(input *Input, program models.LoanProgram) models.ScorePoints {
	breakdown := models.ScorePoints{
		Credit: programs.CreditPoints(input.CreditScore),
		DTI:    programs.DTIPoints(input.TotalDTI),
		LTV:    programs.LTVPoints(input.LTV, program),
	}

	if program == models.LoanProgramFHA || program == models.LoanProgramVA {
		breakdown.ProgramBonus = programs.GovernmentProgramBonus
	}
	if input.RegulatoryCompliance && input.PEPSanctionsClear {
		breakdown.Compliance = programs.CompliancePoints
	}
	if input.IncomeVerified {
		breakdown.IncomeVerification = programs.IncomeVerificationBonus
	}
	if input.DocumentAuthenticityScore >= programs.DocumentQualityFloor {
		breakdown.DocumentQuality = programs.DocumentQualityBonus
	}
	return breakdown
}

// conditions derives the conditional-approval requirements from the weak
// sub-scores.
func (h *Handler) conditions(breakdown models.ScorePoints) []string {
	conditions := []string{}

	if breakdown.Credit < 25 {
		conditions = append(conditions, "Provide letter of explanation for credit history")
	}
	if breakdown.DTI < 20 {
		conditions = append(conditions,
			"Provide additional income documentation",
			"Demonstrate 2 months reserves")
	}
	if breakdown.IncomeVerification == 0 {
		conditions = append(conditions, "Complete employment verification")
	}
	if len(conditions) == 0 {
		conditions = append(conditions, "Final underwriter review required")
	}
	return conditions
}

func (h *Handler) denialReasons(input *Input) []string {
	reasons := []string{}

	if input.CreditScore < programs.DenialCreditFloor {
		reasons = append(reasons,
			fmt.Sprintf("Credit score %d below minimum threshold", input.CreditScore))
	}
	if input.TotalDTI > programs.DenialMaxDTI {
		reasons = append(reasons,
			fmt.Sprintf("DTI ratio %.1f%% exceeds maximum allowed", input.TotalDTI*100))
	}
	if input.LTV > programs.DenialMaxLTV {
		reasons = append(reasons,
			fmt.Sprintf("LTV ratio %.1f%% exceeds maximum allowed", input.LTV*100))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Overall risk assessment unfavorable")
	}
	return reasons
}

// loanTerms computes the indicative terms attached to approvals and
// conditional approvals.
func (h *Handler) loanTerms(input *Input, program models.LoanProgram, total float64) *models.LoanTerms {
	adjustmentBps := programs.RateAdjustmentForScore(total) + programs.ProgramRateAdjustment(program)
	rate := programs.BaseNoteRate + adjustmentBps/10000

	termMonths := input.LoanTermMonths
	if termMonths <= 0 {
		termMonths = programs.DefaultTermMonths
	}

	var monthlyPMI float64
	if programs.RequiresMortgageInsurance(program, input.LTV) {
		monthlyPMI = round2(input.LoanAmount * programs.PMIRate(input.LTV) / 12)
	}

	return &models.LoanTerms{
		InterestRate:      round4(rate),
		APR:               round4(rate + programs.APRSpread),
		TermMonths:        termMonths,
		MonthlyPayment:    round2(amortizedPayment(input.LoanAmount, rate, termMonths)),
		MonthlyPMI:        monthlyPMI,
		EstimatedClosing:  round2(input.LoanAmount * programs.ClosingCostRatio),
		EscrowRequired:    programs.EscrowRequired(program, input.LTV),
		PrepaymentPenalty: program == models.LoanProgramNonQM,
	}
}

func (h *Handler) keyFactors(input *Input, decision models.DecisionType) []string {
	factors := []string{
		fmt.Sprintf("Credit Score: %d", input.CreditScore),
		fmt.Sprintf("DTI Ratio: %.1f%%", input.TotalDTI*100),
		fmt.Sprintf("LTV Ratio: %.1f%%", input.LTV*100),
	}
	if decision == models.DecisionDeny {
		factors = append(factors, "Overall risk assessment unfavorable")
	}
	return factors
}

func (h *Handler) riskMitigationFactors(input *Input) []string {
	factors := []string{}

	if input.QualifiedMonthlyIncome > 10000 {
		factors = append(factors, "High income level provides payment stability")
	}
	if input.LTV <= 0.70 {
		factors = append(factors, "Low loan-to-value ratio reduces default risk")
	}
	if input.CreditScore >= 760 {
		factors = append(factors, "Excellent credit history demonstrates reliability")
	}
	return factors
}

// confidence averages the confidences the category scorers reported.
// Scorers that did not report one are left out.
func (h *Handler) confidence(input *Input) float64 {
	var sum float64
	var count int
	for _, result := range []*models.CategoryResult{
		input.CreditResult, input.DTIResult, input.LTVResult,
		input.PropertyResult, input.KYCResult,
	} {
		if result != nil && result.Confidence > 0 {
			sum += result.Confidence
			count++
		}
	}
	if count == 0 {
		return 85
	}
	return round2(sum / float64(count))
}

func nextSteps(decision models.DecisionType, conditions []string) []string {
	switch decision {
	case models.DecisionApprove:
		return []string{
			"Loan commitment letter will be issued within 24 hours",
			"Schedule property appraisal if needed",
			"Finalize insurance arrangements",
			"Schedule closing",
		}
	case models.DecisionConditional:
		steps := []string{"Submit all required conditions within 30 days"}
		for _, condition := range conditions {
			steps = append(steps, "Complete: "+condition)
		}
		return steps
	default:
		return []string{
			"Adverse action notice will be sent",
			"Review areas for improvement",
			"Consider reapplying after addressing issues",
		}
	}
}

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
