// internal/workers/credit/analyze-credit-score/handler.go
package analyzecreditscore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/programs"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-credit-score"
)

const scoreRecencyWindow = 30 * 24 * time.Hour

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
		h.failJob(client, job, "CREDIT_ANALYSIS_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if len(input.CreditScores) == 0 {
		return nil, errors.NewValidationError("creditScores", "at least one credit score is required")
	}
	for i, entry := range input.CreditScores {
		if entry.ScoreValue < 300 || entry.ScoreValue > 850 {
			return nil, errors.NewValidationError(
				fmt.Sprintf("creditScores[%d].scoreValue", i),
				fmt.Sprintf("credit score %d outside valid range [300,850]", entry.ScoreValue),
			)
		}
	}

	repScore := representativeScore(input.CreditScores)
	rating := programs.CreditRating(repScore)

	evaluated := input.Programs
	if len(evaluated) == 0 {
		evaluated = models.AllLoanPrograms
	}

	evaluations := make([]ProgramEvaluation, 0, len(evaluated))
	for _, program := range evaluated {
		eval, err := h.evaluateProgram(program, repScore, input.LoanAmount, input.LTV)
		if err != nil {
			return nil, err
		}
		evaluations = append(evaluations, eval)
	}

	eligible := eligibleProgramsByAdjustment(evaluations)

	output := &Output{
		ApplicationID:       input.ApplicationID,
		RepresentativeScore: repScore,
		Rating:              rating,
		Evaluations:         evaluations,
		EligiblePrograms:    eligible,
		Recommendation:      recommendationForRating(rating),
		Confidence:          h.confidenceScore(input),
		Result:              buildCategoryResult(repScore, rating, eligible),
	}

	h.logger.Info("credit analysis completed", map[string]interface{}{
		"applicationId":       input.ApplicationID,
		"representativeScore": repScore,
		"rating":              rating,
		"eligiblePrograms":    len(eligible),
	})

	return output, nil
}

// representativeScore reduces multiple bureau scores to one number: a
// single score stands alone, two scores take the lower, three or more take
// the median of the sorted values.
func representativeScore(entries []models.CreditScoreEntry) int {
	scores := make([]int, len(entries))
	for i, e := range entries {
		scores[i] = e.ScoreValue
	}
	sort.Ints(scores)

	switch n := len(scores); {
	case n == 1:
		return scores[0]
	case n == 2:
		return scores[0]
	case n%2 == 1:
		return scores[n/2]
	default:
		return (scores[n/2-1] + scores[n/2]) / 2
	}
}

func (h *Handler) evaluateProgram(program models.LoanProgram, score int, loanAmount, ltv float64) (ProgramEvaluation, error) {
	minScore, ok := programs.MinScore(program)
	if !ok {
		return ProgramEvaluation{}, errors.NewUnknownLoanProgramError(string(program))
	}

	eval := ProgramEvaluation{
		Program:              program,
		MinimumScore:         minScore,
		RateTier:             programs.RateTier(program, score),
		PricingAdjustmentBps: programs.PricingAdjustment(program, score, ltv),
	}

	eval.Eligible = score >= minScore
	if !eval.Eligible {
		eval.Reasons = append(eval.Reasons,
			fmt.Sprintf("score %d below %s minimum %d", score, program, minScore))
	}

	// Jumbo only applies above the conforming limit.
	if program == models.LoanProgramJumbo && loanAmount > 0 && loanAmount <= programs.ConformingLoanLimit {
		eval.Eligible = false
		eval.Reasons = append(eval.Reasons,
			fmt.Sprintf("loan amount %.0f within conforming limit", loanAmount))
	}

	return eval, nil
}

// eligibleProgramsByAdjustment sorts eligible programs by ascending total
// pricing adjustment so the cheapest program leads.
func eligibleProgramsByAdjustment(evaluations []ProgramEvaluation) []models.LoanProgram {
	eligible := make([]ProgramEvaluation, 0, len(evaluations))
	for _, e := range evaluations {
		if e.Eligible {
			eligible = append(eligible, e)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].PricingAdjustmentBps < eligible[j].PricingAdjustmentBps
	})

	result := make([]models.LoanProgram, len(eligible))
	for i, e := range eligible {
		result[i] = e.Program
	}
	return result
}

func recommendationForRating(rating string) string {
	switch rating {
	case "excellent":
		return "Strong credit profile; proceed with best-tier pricing"
	case "good":
		return "Solid credit profile; standard pricing applies"
	case "fair":
		return "Qualifying credit; review pricing add-ons with the borrower"
	case "poor":
		return "Limited program eligibility; consider FHA or credit remediation"
	default:
		return "Credit remediation recommended before proceeding"
	}
}

// confidenceScore starts at 70 and adjusts for source count, recency and
// the presence of DTI/LTV context, clamped to [0,100].
func (h *Handler) confidenceScore(input *Input) float64 {
	confidence := 70.0

	switch n := len(input.CreditScores); {
	case n >= 3:
		confidence += 15
	case n == 2:
		confidence += 10
	default:
		confidence -= 10
	}

	if allScoresRecent(input.CreditScores, time.Now()) {
		confidence += 10
	}
	if input.DTI > 0 {
		confidence += 5
	}
	if input.LTV > 0 {
		confidence += 5
	}

	return clampFloat(confidence, 0, 100)
}

func allScoresRecent(entries []models.CreditScoreEntry, now time.Time) bool {
	for _, e := range entries {
		if e.ScoreDate == "" {
			return false
		}
		scoreDate, err := time.Parse("2006-01-02", e.ScoreDate)
		if err != nil {
			return false
		}
		if now.Sub(scoreDate) > scoreRecencyWindow {
			return false
		}
	}
	return len(entries) > 0
}

// buildCategoryResult maps the credit rating onto the common scorer
// output shape consumed by the decision engine.
func buildCategoryResult(score int, rating string, eligible []models.LoanProgram) models.CategoryResult {
	var riskScore float64
	var level models.RiskLevel
	switch rating {
	case "excellent":
		riskScore, level = 10, models.RiskVeryLow
	case "good":
		riskScore, level = 25, models.RiskLow
	case "fair":
		riskScore, level = 50, models.RiskMedium
	case "poor":
		riskScore, level = 75, models.RiskHigh
	default:
		riskScore, level = 90, models.RiskHigh
	}

	result := models.NewCategoryResult("credit", riskScore, level)
	result.Indicators = append(result.Indicators,
		fmt.Sprintf("representative score %d (%s)", score, rating))
	if len(eligible) == 0 {
		result.Indicators = append(result.Indicators, "no eligible loan programs at current score")
		result.Recommendations = append(result.Recommendations,
			"Provide letter of explanation for credit history")
	}
	result.Recommendations = append(result.Recommendations, recommendationForRating(rating))
	return result
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
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
