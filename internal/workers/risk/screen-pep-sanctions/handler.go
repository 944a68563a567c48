// internal/workers/risk/screen-pep-sanctions/handler.go
package screenpepsanctions

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"mortgage-workers/internal/common/errors"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/programs"
	"mortgage-workers/internal/providers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "screen-pep-sanctions"
)

type Handler struct {
	config    *Config
	logger    logger.Logger
	screening providers.SanctionsScreeningProvider
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return NewHandlerWithProvider(config, log, providers.UnavailableSanctions{})
}

func NewHandlerWithProvider(config *Config, log logger.Logger, screening providers.SanctionsScreeningProvider) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		screening: screening,
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
		h.failJob(client, job, "SANCTIONS_SCREENING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Borrower.Name) == "" {
		return nil, errors.NewValidationError("borrower.name", "borrower name is required for screening")
	}

	subject := providers.ScreeningSubject{
		FullName:    input.Borrower.Name,
		FirstName:   input.Borrower.FirstName,
		LastName:    input.Borrower.LastName,
		DateOfBirth: input.Borrower.DateOfBirth,
		Nationality: input.Borrower.Nationality,
	}

	lists := input.Lists
	if len(lists) == 0 {
		lists = h.screening.Lists()
	}

	sanctionsMatches, sanctionsRisk, err := h.screenSanctionsLists(ctx, lists, subject)
	if err != nil {
		return nil, errors.NewScreeningFailedError("sanctions", err)
	}

	isPEP, pepLevel, err := h.screening.PEPStatus(ctx, subject)
	if err != nil {
		return nil, errors.NewScreeningFailedError("pep", err)
	}

	watchlistMatches, watchlistRisk, err := h.screenWatchlists(ctx, subject)
	if err != nil {
		return nil, errors.NewScreeningFailedError("watchlist", err)
	}

	criminalRisk, criminalMatches, err := h.screenCriminalRecords(ctx, subject)
	if err != nil {
		return nil, errors.NewScreeningFailedError("criminal", err)
	}

	jurisdictionRisk := 0.0
	highRiskNationality := programs.HighRiskJurisdiction(strings.ToUpper(input.Borrower.Nationality))
	if highRiskNationality {
		jurisdictionRisk = programs.JurisdictionBaseRisk
	}

	terrorismRisk := assessTerrorismRisk(sanctionsMatches, watchlistMatches, isPEP, pepLevel, highRiskNationality)

	overall, factors := overallRisk(
		sanctionsRisk, isPEP, pepLevel, watchlistRisk, criminalRisk, terrorismRisk, jurisdictionRisk)
	level := riskLevel(overall)

	clear := len(sanctionsMatches) == 0 && !(isPEP && pepLevel == "high")

	output := &Output{
		ApplicationID:                input.ApplicationID,
		IsPEP:                        isPEP,
		PEPRiskLevel:                 pepLevel,
		SanctionsMatches:             sanctionsMatches,
		SanctionsRiskScore:           sanctionsRisk,
		WatchlistMatches:             watchlistMatches,
		WatchlistRiskScore:           watchlistRisk,
		CriminalRiskScore:            criminalRisk,
		TerrorismRiskScore:           terrorismRisk,
		JurisdictionRiskScore:        jurisdictionRisk,
		OverallRiskScore:             overall,
		RiskLevel:                    level,
		RiskFactors:                  factors,
		PEPSanctionsClear:            clear,
		RequiresEnhancedDueDiligence: isPEP || level != models.RiskLow,
		RequiresOngoingMonitoring:    overall >= programs.OngoingMonitoringThreshold,
		ComplianceReport:             buildComplianceReport(lists, sanctionsMatches, watchlistMatches, isPEP, level),
		Confidence:                   confidence(lists, &input.Borrower),
	}
	output.Result = buildCategoryResult(output, criminalMatches)

	h.logger.Info("pep/sanctions screening complete", map[string]interface{}{
		"applicationId":    input.ApplicationID,
		"overallRiskScore": overall,
		"riskLevel":        level,
		"isPep":            isPEP,
		"sanctionsMatches": len(sanctionsMatches),
		"clear":            clear,
	})

	return output, nil
}

// screenSanctionsLists checks every requested list and keeps the highest
// list risk score among matches.
func (h *Handler) screenSanctionsLists(ctx context.Context, lists []string,
	subject providers.ScreeningSubject) ([]providers.ScreeningMatch, float64, error) {

	matches := []providers.ScreeningMatch{}
	var risk float64
	for _, list := range lists {
		listMatches, err := h.screening.SanctionsMatches(ctx, list, subject)
		if err != nil {
			return nil, 0, err
		}
		if len(listMatches) == 0 {
			continue
		}
		matches = append(matches, listMatches...)
		if info, ok := programs.SanctionsLists[list]; ok {
			risk = math.Max(risk, info.RiskScore)
		} else {
			risk = math.Max(risk, 80)
		}
	}
	return matches, risk, nil
}

func (h *Handler) screenWatchlists(ctx context.Context,
	subject providers.ScreeningSubject) ([]providers.ScreeningMatch, float64, error) {

	matches := []providers.ScreeningMatch{}
	var risk float64
	for category, categoryRisk := range programs.WatchlistCategories {
		categoryMatches, err := h.screening.WatchlistMatches(ctx, category, subject)
		if err != nil {
			return nil, 0, err
		}
		if len(categoryMatches) == 0 {
			continue
		}
		matches = append(matches, categoryMatches...)
		risk = math.Max(risk, categoryRisk)
	}
	return matches, risk, nil
}

func (h *Handler) screenCriminalRecords(ctx context.Context,
	subject providers.ScreeningSubject) (float64, []providers.ScreeningMatch, error) {

	matches, err := h.screening.WatchlistMatches(ctx, programs.CriminalRecordsCategory, subject)
	if err != nil {
		return 0, nil, err
	}
	var risk float64
	for _, match := range matches {
		risk = math.Max(risk, match.Score)
	}
	return risk, matches, nil
}

// assessTerrorismRisk takes the strongest terrorism financing signal.
func assessTerrorismRisk(sanctionsMatches, watchlistMatches []providers.ScreeningMatch,
	isPEP bool, pepLevel string, highRiskNationality bool) float64 {

	var risk float64
	for _, match := range watchlistMatches {
		if match.ListName == "terrorism" {
			risk = math.Max(risk, programs.TerrorismWatchlistRisk)
		}
	}
	if len(sanctionsMatches) > 0 {
		risk = math.Max(risk, programs.TerrorismSanctionsRisk)
	}
	if isPEP && pepLevel == "high" {
		risk = math.Max(risk, programs.TerrorismPEPHighRisk)
	}
	if highRiskNationality {
		risk = math.Max(risk, programs.TerrorismJurisdictionRisk)
	}
	return risk
}

// overallRisk takes the maximum weighted component, the most
// conservative aggregation for sanctions screening. A clean screen
// carries a small baseline instead of zero.
func overallRisk(sanctionsRisk float64, isPEP bool, pepLevel string,
	watchlistRisk, criminalRisk, terrorismRisk, jurisdictionRisk float64) (float64, []string) {

	var components []float64
	factors := []string{}

	if sanctionsRisk > 0 {
		components = append(components, sanctionsRisk*programs.DirectSanctionsWeight)
		factors = append(factors, "Sanctions list match detected")
	}
	if isPEP {
		level := pepLevel
		if level == "" {
			level = "low"
		}
		components = append(components, programs.PEPLevelScores[level]*programs.PEPStatusWeight)
		factors = append(factors, fmt.Sprintf("PEP status identified (%s risk)", level))
	}
	if watchlistRisk > 0 {
		components = append(components, watchlistRisk*programs.WatchlistWeight)
		factors = append(factors, "Watchlist match detected")
	}
	if criminalRisk > 0 {
		components = append(components, criminalRisk*programs.CriminalRecordWeight)
		factors = append(factors, "Criminal records identified")
	}
	if terrorismRisk > 0 {
		components = append(components, terrorismRisk*programs.TerrorismWeight)
		factors = append(factors, "Terrorism financing risk indicators")
	}
	if jurisdictionRisk > 0 {
		components = append(components, jurisdictionRisk*programs.JurisdictionWeight)
		factors = append(factors, "High-risk jurisdiction nationality")
	}

	if len(components) == 0 {
		return programs.CleanScreeningBaseline, factors
	}
	highest := components[0]
	for _, c := range components[1:] {
		if c > highest {
			highest = c
		}
	}
	return round2(highest), factors
}

func riskLevel(score float64) models.RiskLevel {
	switch {
	case score >= programs.ScreeningHighRiskThreshold:
		return models.RiskHigh
	case score >= programs.ScreeningMediumRiskThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func buildComplianceReport(lists []string, sanctionsMatches, watchlistMatches []providers.ScreeningMatch,
	isPEP bool, level models.RiskLevel) ComplianceReport {

	basis := "No adverse findings"
	switch {
	case len(sanctionsMatches) > 0:
		basis = "Direct sanctions list match"
	case isPEP:
		basis = "Politically exposed person identified"
	case len(watchlistMatches) > 0:
		basis = "Watchlist match identified"
	}

	return ComplianceReport{
		ScreeningDate:    time.Now().UTC().Format(time.RFC3339),
		ListsChecked:     lists,
		TotalMatches:     len(sanctionsMatches) + len(watchlistMatches),
		PEPIdentified:    isPEP,
		DecisionBasis:    basis,
		ReviewRequired:   level != models.RiskLow,
		ReportableToAuth: len(sanctionsMatches) > 0,
	}
}

// confidence reflects how much identifying data the screen had to work
// with; a provider with no lists configured is an empty screen.
func confidence(lists []string, borrower *models.BorrowerInfo) float64 {
	score := 85.0
	if borrower.DateOfBirth != "" {
		score += 5
	}
	if borrower.Nationality != "" {
		score += 5
	}
	if len(lists) == 0 {
		score -= 40
	}
	return math.Max(0, math.Min(score, 100))
}

func buildCategoryResult(output *Output, criminalMatches []providers.ScreeningMatch) models.CategoryResult {
	result := models.NewCategoryResult("pep_sanctions", output.OverallRiskScore, output.RiskLevel)
	result.Confidence = output.Confidence
	result.Indicators = append(result.Indicators, output.RiskFactors...)

	if len(output.SanctionsMatches) > 0 {
		result.Recommendations = append(result.Recommendations,
			"CRITICAL: Sanctions match detected - escalate immediately to compliance",
			"Do not proceed with transaction until sanctions clearance obtained",
			"Report to relevant authorities as required by law")
		return result
	}

	if output.IsPEP {
		result.Recommendations = append(result.Recommendations,
			"Implement enhanced due diligence procedures for PEP status",
			"Obtain source of funds and source of wealth documentation")
		if output.PEPRiskLevel == "high" {
			result.Recommendations = append(result.Recommendations,
				"Require senior management approval for PEP relationship",
				"Implement ongoing enhanced monitoring")
		}
	}

	if len(output.WatchlistMatches) > 0 {
		result.Recommendations = append(result.Recommendations,
			"Investigate watchlist matches and document findings")
		for _, match := range output.WatchlistMatches {
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("Enhanced screening required for %s watchlist match", match.ListName))
		}
	}

	if len(criminalMatches) > 0 {
		result.Recommendations = append(result.Recommendations,
			"Review criminal record findings with underwriting management")
	}

	if output.JurisdictionRiskScore > 0 {
		result.Recommendations = append(result.Recommendations,
			"Apply enhanced due diligence for high-risk jurisdiction exposure")
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
