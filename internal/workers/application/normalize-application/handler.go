// internal/workers/application/normalize-application/handler.go
package normalizeapplication

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "normalize-application"
)

// Credit score bounds shared by FICO and VantageScore.
const (
	minCreditScore = 300
	maxCreditScore = 850
)

// Annualization multipliers per pay frequency. Hourly assumes a 40-hour
// week over 52 weeks.
var frequencyMultipliers = map[models.IncomeFrequency]float64{
	models.FrequencyWeekly:      52,
	models.FrequencyBiweekly:    26,
	models.FrequencySemimonthly: 24,
	models.FrequencyMonthly:     12,
	models.FrequencyQuarterly:   4,
	models.FrequencyAnnually:    1,
	models.FrequencyHourly:      40 * 52,
}

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
		h.failJob(client, job, string(errors.ErrCodeValidationFailed), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	app := input.Application
	var warnings []string

	for i, entry := range app.CreditScores {
		if entry.ScoreValue < minCreditScore || entry.ScoreValue > maxCreditScore {
			return nil, errors.NewValidationError(
				fmt.Sprintf("creditScores[%d].scoreValue", i),
				fmt.Sprintf("credit score %d outside valid range [%d,%d]", entry.ScoreValue, minCreditScore, maxCreditScore),
			)
		}
	}

	if app.Property.AppraisedValue <= 0 {
		return nil, errors.NewValidationError(
			"property.appraisedValue",
			fmt.Sprintf("appraised value must be positive, got %.2f", app.Property.AppraisedValue),
		)
	}

	sources := make([]models.IncomeSourceEntry, len(app.IncomeSources))
	var totalAnnual float64
	for i, src := range app.IncomeSources {
		normalized, err := h.normalizeIncomeSource(i, src)
		if err != nil {
			return nil, err
		}
		if normalized.Employer == "" && normalized.SourceType != models.IncomeSelfEmployment {
			warnings = append(warnings, fmt.Sprintf("incomeSources[%d]: no employer on record", i))
		}
		sources[i] = normalized
		totalAnnual += normalized.AnnualAmount
	}

	totalMonthly := totalAnnual / 12
	if totalMonthly <= 0 {
		return nil, errors.NewValidationError(
			"incomeSources",
			fmt.Sprintf("total monthly income must be positive, got %.2f", totalMonthly),
		)
	}

	var totalMonthlyDebt float64
	for _, debt := range app.Debts {
		if debt.DebtType == models.DebtProposedMortgage {
			continue
		}
		totalMonthlyDebt += debt.MonthlyPayment
	}

	borrower := app.Borrower
	if borrower.CurrentAddress == "" {
		warnings = append(warnings, "borrower: no current address on record")
	}
	if warnings == nil {
		warnings = []string{}
	}

	normalized := models.NormalizedRecord{
		ApplicationID:      app.ApplicationID,
		Borrower:           borrower,
		NormalizedSSN:      stripNonDigits(borrower.SSN),
		NormalizedPhone:    stripNonDigits(borrower.PhoneNumber),
		CreditScores:       app.CreditScores,
		IncomeSources:      sources,
		TotalMonthlyIncome: round2(totalMonthly),
		TotalAnnualIncome:  round2(totalAnnual),
		Debts:              app.Debts,
		TotalMonthlyDebt:   round2(totalMonthlyDebt),
		Property:           app.Property,
		Loan:               app.Loan,
		Documents:          app.Documents,
		Warnings:           warnings,
	}

	h.logger.Info("application normalized", map[string]interface{}{
		"applicationId": app.ApplicationID,
		"incomeSources": len(sources),
		"monthlyIncome": normalized.TotalMonthlyIncome,
		"warnings":      len(warnings),
	})

	return &Output{Normalized: normalized, Warnings: warnings}, nil
}

// normalizeIncomeSource converts one source to canonical annual and
// monthly amounts. An unrecognized frequency is a validation failure, not
// a silent annual fallback.
func (h *Handler) normalizeIncomeSource(index int, src models.IncomeSourceEntry) (models.IncomeSourceEntry, error) {
	multiplier, ok := frequencyMultipliers[src.Frequency]
	if !ok {
		return src, errors.NewValidationError(
			fmt.Sprintf("incomeSources[%d].frequency", index),
			fmt.Sprintf("unknown pay frequency %q", src.Frequency),
		)
	}

	amount := src.Amount
	if amount == 0 && src.MonthlyAmount > 0 {
		amount = src.MonthlyAmount
		multiplier = 12
	}
	if amount == 0 && src.AnnualAmount > 0 {
		amount = src.AnnualAmount
		multiplier = 1
	}

	src.AnnualAmount = round2(amount * multiplier)
	src.MonthlyAmount = round2(src.AnnualAmount / 12)
	return src, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
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
