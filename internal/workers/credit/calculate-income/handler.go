// internal/workers/credit/calculate-income/handler.go
package calculateincome

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
	TaskType = "calculate-income"
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
		h.failJob(client, job, "INCOME_CALCULATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if len(input.IncomeSources) == 0 {
		return nil, errors.NewValidationError("incomeSources", "at least one income source is required")
	}

	method := input.Method
	if method == "" {
		method = programs.MethodStandard
	}
	if !programs.ValidCalculationMethod(method) {
		return nil, errors.NewValidationError(
			"calculationMethod",
			fmt.Sprintf("unknown calculation method %q", method),
		)
	}

	breakdown := IncomeBreakdown{}
	var excluded float64
	var exclusionReasons []string
	averagingApplied := false

	for _, source := range input.IncomeSources {
		monthly := monthlyAmount(source)

		if reason := exclusionReason(source, method); reason != "" {
			excluded += monthly
			exclusionReasons = append(exclusionReasons, reason)
			continue
		}

		qualified := monthly
		if source.IsVariable && source.YearOverYearChange < programs.DecliningTrendThreshold {
			qualified *= programs.DecliningIncomeHaircut
			averagingApplied = true
		}
		if method == programs.MethodConservative && source.DocumentationQuality == "poor" {
			qualified *= programs.PoorDocumentationHaircut
		}

		switch {
		case programs.IsBaseIncome(source.SourceType):
			breakdown.Base += qualified
		case programs.IsVariableIncome(source.SourceType):
			breakdown.Variable += qualified
		default:
			breakdown.Other += qualified
		}
	}

	breakdown.Base = round2(breakdown.Base)
	breakdown.Variable = round2(breakdown.Variable)
	breakdown.Other = round2(breakdown.Other)
	total := round2(breakdown.Base + breakdown.Variable + breakdown.Other)

	stability := assessStability(input.IncomeSources)
	confidence := h.confidence(input.IncomeSources, excluded, averagingApplied)

	output := &Output{
		ApplicationID:          input.ApplicationID,
		QualifiedMonthlyIncome: total,
		QualifiedAnnualIncome:  round2(total * 12),
		Breakdown:              breakdown,
		ExcludedIncome:         round2(excluded),
		ExclusionReasons:       exclusionReasons,
		AveragingApplied:       averagingApplied,
		CalculationMethod:      method,
		Stability:              stability,
		Confidence:             confidence,
		Result:                 buildCategoryResult(total, stability, exclusionReasons),
	}

	h.logger.Info("income calculated", map[string]interface{}{
		"applicationId":   input.ApplicationID,
		"qualifiedIncome": total,
		"excludedIncome":  output.ExcludedIncome,
		"method":          method,
		"stabilityScore":  stability.Score,
	})

	return output, nil
}

// monthlyAmount prefers the normalized monthly figure and falls back to
// the annual amount when only that is present.
func monthlyAmount(source models.IncomeSourceEntry) float64 {
	if source.MonthlyAmount > 0 {
		return source.MonthlyAmount
	}
	if source.AnnualAmount > 0 {
		return source.AnnualAmount / 12
	}
	return 0
}

// exclusionReason decides whether a source qualifies at all under the
// given method. Unemployment compensation is exempt from the tenure
// requirements since it is inherently short-lived when continuing.
func exclusionReason(source models.IncomeSourceEntry, method string) string {
	if !source.IsContinuing {
		return fmt.Sprintf("%s: Income not continuing", source.SourceType)
	}
	if source.SourceType == models.IncomeUnemployment {
		return ""
	}
	if source.StabilityMonths < programs.StandardStabilityMonths {
		return fmt.Sprintf("%s: Less than %d months stability", source.SourceType, programs.StandardStabilityMonths)
	}
	if method == programs.MethodConservative && source.StabilityMonths < programs.ConservativeStabilityMonths {
		return fmt.Sprintf("%s: Less than %d months stability", source.SourceType, programs.ConservativeStabilityMonths)
	}
	return ""
}

// assessStability scores income durability on a 100-point scale with
// fixed penalties per weakness across all sources.
func assessStability(sources []models.IncomeSourceEntry) StabilityAssessment {
	score := 100.0
	var riskFactors []string
	var stabilityFactors []string

	for _, source := range sources {
		name := string(source.SourceType)

		if source.StabilityMonths < programs.ConservativeStabilityMonths {
			score -= programs.ShortTenurePenalty
			riskFactors = append(riskFactors, fmt.Sprintf("%s has under 12 months of history", name))
		} else if source.StabilityMonths >= programs.StrongTenureMonths {
			stabilityFactors = append(stabilityFactors, fmt.Sprintf("%s has over 24 months of history", name))
		}

		if source.YearOverYearChange < programs.DecliningTrendThreshold {
			score -= programs.DecliningTrendPenalty
			riskFactors = append(riskFactors, fmt.Sprintf("%s is declining year over year", name))
		} else if source.YearOverYearChange > programs.GrowingTrendThreshold {
			stabilityFactors = append(stabilityFactors, fmt.Sprintf("%s is growing year over year", name))
		}

		if source.IsVariable {
			score -= programs.VariableIncomePenalty
			riskFactors = append(riskFactors, fmt.Sprintf("%s is variable", name))
		}
		if source.SourceType == models.IncomeSelfEmployment {
			score -= programs.SelfEmploymentPenalty
			riskFactors = append(riskFactors, "self-employment income carries elevated volatility")
		}
		if source.DocumentationQuality == "poor" {
			score -= programs.PoorDocumentationPenalty
			riskFactors = append(riskFactors, fmt.Sprintf("%s has poor documentation", name))
		} else if source.DocumentationQuality == "excellent" {
			stabilityFactors = append(stabilityFactors, fmt.Sprintf("%s is fully documented", name))
		}
	}

	score = math.Max(score, 0)

	level := "high"
	switch {
	case score >= programs.StabilityLowRiskFloor:
		level = "low"
	case score >= programs.StabilityMediumRiskFloor:
		level = "medium"
	}

	return StabilityAssessment{
		Score:            score,
		RiskLevel:        level,
		StabilityFactors: stabilityFactors,
		RiskFactors:      riskFactors,
	}
}

func (h *Handler) confidence(sources []models.IncomeSourceEntry, excluded float64, averagingApplied bool) float64 {
	confidence := 95.0
	for _, source := range sources {
		if source.DocumentationQuality == "poor" {
			confidence -= 20
			break
		}
	}
	if averagingApplied {
		confidence -= 10
	}
	if excluded > 0 {
		confidence -= 5
	}
	if len(sources) < 2 {
		confidence -= 15
	}
	return math.Max(confidence, 30)
}

func buildCategoryResult(total float64, stability StabilityAssessment, exclusionReasons []string) models.CategoryResult {
	level := models.RiskLow
	switch stability.RiskLevel {
	case "medium":
		level = models.RiskMedium
	case "high":
		level = models.RiskHigh
	}

	result := models.NewCategoryResult("income", round2(100-stability.Score), level)
	result.Indicators = append(result.Indicators,
		fmt.Sprintf("qualified monthly income $%.2f (stability %s)", total, stability.RiskLevel))
	result.Indicators = append(result.Indicators, stability.RiskFactors...)

	if len(exclusionReasons) > 0 {
		result.Recommendations = append(result.Recommendations,
			"Document excluded income sources to increase qualifying income")
	}
	if stability.RiskLevel == "high" {
		result.Recommendations = append(result.Recommendations,
			"Obtain additional income documentation before final underwriting")
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
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
