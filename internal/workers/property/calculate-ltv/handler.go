// internal/workers/property/calculate-ltv/handler.go
package calculateltv

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/programs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-ltv"
)

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
		h.failJob(client, job, "LTV_CALCULATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.AppraisedValue <= 0 {
		return nil, errors.NewValidationError(
			"appraisedValue",
			fmt.Sprintf("appraised value must be positive, got %.2f", input.AppraisedValue),
		)
	}
	if input.LoanAmount < 0 {
		return nil, errors.NewValidationError(
			"loanAmount",
			fmt.Sprintf("loan amount must not be negative, got %.2f", input.LoanAmount),
		)
	}

	program := input.Program
	if program == "" {
		program = models.LoanProgramConventional
	}
	if !program.Valid() {
		return nil, errors.NewUnknownLoanProgramError(string(program))
	}
	purpose := input.Purpose
	if purpose == "" {
		purpose = models.LoanPurposePurchase
	}

	value := collateralValue(input, purpose)
	ltv := round4(input.LoanAmount / value)
	cltv := round4((input.LoanAmount + input.SubordinateLiens) / value)

	maxAllowed, _ := programs.MaxLTVForPurpose(program, purpose)
	equity := round2(value - input.LoanAmount - input.SubordinateLiens)

	output := &Output{
		ApplicationID:     input.ApplicationID,
		LTV:               ltv,
		CLTV:              cltv,
		CollateralValue:   value,
		Equity:            equity,
		EquityRatio:       round4(equity / value),
		MaxAllowedLTV:     maxAllowed,
		WithinProgramMax:  ltv <= maxAllowed,
		RiskLevel:         programs.LTVRiskLevel(program, ltv),
		DownPayment:       analyzeDownPayment(input, program, value),
		MortgageInsurance: analyzeMortgageInsurance(input, program, ltv, value),
		RedFlags:          redFlags(input, ltv, cltv, value),
	}
	output.Result = buildCategoryResult(output, program, purpose)

	h.logger.Info("ltv calculated", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"ltv":           ltv,
		"cltv":          cltv,
		"riskLevel":     output.RiskLevel,
		"withinMax":     output.WithinProgramMax,
	})

	return output, nil
}

// collateralValue is the lesser of appraised value and purchase price for
// purchases; appraised value otherwise.
func collateralValue(input *Input, purpose models.LoanPurpose) float64 {
	if purpose == models.LoanPurposePurchase && input.PurchasePrice > 0 {
		return math.Min(input.AppraisedValue, input.PurchasePrice)
	}
	return input.AppraisedValue
}

func analyzeDownPayment(input *Input, program models.LoanProgram, value float64) DownPaymentAnalysis {
	rule, _ := programs.DownPayment(program)
	ratio := round4(input.DownPayment / value)
	return DownPaymentAnalysis{
		Amount:           input.DownPayment,
		Ratio:            ratio,
		MinimumRequired:  round2(value * rule.Minimum),
		RecommendedRatio: rule.Recommended,
		MeetsMinimum:     ratio >= rule.Minimum,
		MeetsRecommended: ratio >= rule.Recommended,
	}
}

func analyzeMortgageInsurance(input *Input, program models.LoanProgram, ltv, value float64) MortgageInsurance {
	if !programs.RequiresMortgageInsurance(program, ltv) {
		return MortgageInsurance{Required: false}
	}
	rate := programs.PMIRate(ltv)
	mi := MortgageInsurance{
		Required:       true,
		AnnualRate:     rate,
		MonthlyPremium: round2(input.LoanAmount * rate / 12),
	}
	if program != models.LoanProgramFHA {
		mi.RemovalLTV = programs.PMIRemovalThreshold
		mi.RemovalPrincipal = round2(value * programs.PMIRemovalThreshold)
	}
	return mi
}

func redFlags(input *Input, ltv, cltv, value float64) []string {
	flags := []string{}
	if ltv > 1.0 {
		flags = append(flags, "loan amount exceeds collateral value")
	}
	if cltv > ltv && cltv > 1.0 {
		flags = append(flags, "combined liens exceed collateral value")
	}
	if input.PurchasePrice > 0 && input.AppraisedValue < input.PurchasePrice*0.95 {
		flags = append(flags, "appraisal more than 5% below purchase price")
	}
	if input.SubordinateLiens > input.LoanAmount*0.25 {
		flags = append(flags, "subordinate financing exceeds 25% of first lien")
	}
	if input.DownPayment < 0 {
		flags = append(flags, "negative down payment reported")
	}
	return flags
}

var riskLevelScores = map[models.RiskLevel]float64{
	models.RiskVeryLow:  10,
	models.RiskLow:      20,
	models.RiskMedium:   45,
	models.RiskHigh:     70,
	models.RiskVeryHigh: 90,
}

func buildCategoryResult(output *Output, program models.LoanProgram, purpose models.LoanPurpose) models.CategoryResult {
	score := riskLevelScores[output.RiskLevel]
	if !output.WithinProgramMax {
		score = math.Min(score+10, 100)
	}
	score = math.Min(score+float64(len(output.RedFlags))*5, 100)

	result := models.NewCategoryResult("ltv", score, output.RiskLevel)
	result.Indicators = append(result.Indicators,
		fmt.Sprintf("LTV %.2f%% against %s %s ceiling %.2f%%",
			output.LTV*100, program, purpose, output.MaxAllowedLTV*100))
	result.Indicators = append(result.Indicators, output.RedFlags...)

	if !output.WithinProgramMax {
		result.Recommendations = append(result.Recommendations,
			"Increase down payment or reduce loan amount to meet program LTV ceiling")
	}
	if output.MortgageInsurance.Required {
		result.Recommendations = append(result.Recommendations,
			"Mortgage insurance required at this LTV")
	}
	if !output.DownPayment.MeetsMinimum {
		result.Recommendations = append(result.Recommendations,
			"Down payment below program minimum")
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
