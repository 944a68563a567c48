// internal/workers/application/check-readiness-score/handler.go
package checkreadinessscore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-readiness-score"
)

// Document types an underwriter expects before full review starts.
var expectedDocumentTypes = []string{
	"pay_stub",
	"w2",
	"bank_statement",
	"purchase_contract",
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
		h.failJob(client, job, "READINESS_SCORE_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	app := &input.Application

	missing := []string{}

	credit := h.scoreCreditData(app.CreditScores, &missing)
	income := h.scoreIncomeData(app.IncomeSources, &missing)
	property := h.scorePropertyData(&app.Property, &missing)
	documentation := h.scoreDocumentation(app.Documents, &missing)

	// Weighted average: Credit(30%) + Income(30%) + Property(20%) + Documentation(20%)
	finalScore := int(
		float64(credit)*0.30 +
			float64(income)*0.30 +
			float64(property)*0.20 +
			float64(documentation)*0.20)

	level := h.classifyReadinessLevel(finalScore)

	breakdown := ScoreBreakdown{
		Credit:        credit,
		Income:        income,
		Property:      property,
		Documentation: documentation,
	}

	h.logger.Info("readiness score calculated", map[string]interface{}{
		"applicationId": app.ApplicationID,
		"score":         finalScore,
		"level":         level,
		"breakdown":     breakdown,
		"missingCount":  len(missing),
	})

	return &Output{
		ReadinessScore: finalScore,
		ReadinessLevel: level,
		ScoreBreakdown: breakdown,
		MissingItems:   missing,
	}, nil
}

func (h *Handler) scoreCreditData(scores []models.CreditScoreEntry, missing *[]string) int {
	bureaus := map[string]bool{}
	for _, score := range scores {
		bureau := strings.ToLower(strings.TrimSpace(score.Bureau))
		if bureau != "" && score.ScoreValue > 0 {
			bureaus[bureau] = true
		}
	}

	switch {
	case len(bureaus) >= 3:
		return 100
	case len(bureaus) == 2:
		*missing = append(*missing, "Credit report from a third bureau")
		return 80
	case len(bureaus) == 1:
		*missing = append(*missing, "Credit reports from additional bureaus")
		return 60
	default:
		*missing = append(*missing, "Credit reports")
		return 0
	}
}

func (h *Handler) scoreIncomeData(sources []models.IncomeSourceEntry, missing *[]string) int {
	if len(sources) == 0 {
		*missing = append(*missing, "Income sources")
		return 0
	}

	score := 50

	allEmployers := true
	allTenure := true
	allDocQuality := true
	for _, source := range sources {
		if source.Employer == "" {
			allEmployers = false
		}
		if source.StabilityMonths <= 0 {
			allTenure = false
		}
		if source.DocumentationQuality == "" {
			allDocQuality = false
		}
	}

	if allEmployers {
		score += 20
	} else {
		*missing = append(*missing, "Employer details for all income sources")
	}
	if allTenure {
		score += 15
	} else {
		*missing = append(*missing, "Employment tenure for all income sources")
	}
	if allDocQuality {
		score += 15
	} else {
		*missing = append(*missing, "Income documentation quality assessment")
	}

	return h.clamp(score, 0, 100)
}

func (h *Handler) scorePropertyData(property *models.PropertyRecord, missing *[]string) int {
	score := 0

	if property.AppraisedValue > 0 {
		score += 40
	} else {
		*missing = append(*missing, "Property appraisal")
	}
	if property.PropertyType != "" {
		score += 20
	} else {
		*missing = append(*missing, "Property type")
	}
	if property.Address != "" && property.City != "" && property.State != "" && property.ZipCode != "" {
		score += 25
	} else {
		*missing = append(*missing, "Complete property address")
	}
	if property.YearBuilt > 0 {
		score += 15
	} else {
		*missing = append(*missing, "Property year built")
	}

	return h.clamp(score, 0, 100)
}

func (h *Handler) scoreDocumentation(documents []models.DocumentRecord, missing *[]string) int {
	present := map[string]bool{}
	for _, doc := range documents {
		present[strings.ToLower(strings.TrimSpace(doc.DocumentType))] = true
	}

	score := 0
	perDocument := 100 / len(expectedDocumentTypes)
	for _, docType := range expectedDocumentTypes {
		if present[docType] {
			score += perDocument
		} else {
			*missing = append(*missing, fmt.Sprintf("Document: %s", docType))
		}
	}

	return h.clamp(score, 0, 100)
}

func (h *Handler) classifyReadinessLevel(score int) string {
	switch {
	case score >= 81:
		return "ready"
	case score >= 61:
		return "mostly_ready"
	case score >= 41:
		return "needs_documents"
	default:
		return "incomplete"
	}
}

func (h *Handler) clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
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
