// internal/workers/property/analyze-property-risk/handler.go
package analyzepropertyrisk

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
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
	TaskType = "analyze-property-risk"
)

// Condition score used when the build year is unknown.
const unknownAgeScore = 55.0

type Handler struct {
	config        *Config
	logger        logger.Logger
	location      providers.LocationDataProvider
	market        providers.MarketDataProvider
	environmental providers.EnvironmentalDataProvider
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return NewHandlerWithProviders(config, log,
		providers.UnavailableLocation{},
		providers.UnavailableMarket{},
		providers.UnavailableEnvironmental{},
	)
}

func NewHandlerWithProviders(config *Config, log logger.Logger,
	location providers.LocationDataProvider,
	market providers.MarketDataProvider,
	environmental providers.EnvironmentalDataProvider) *Handler {
	return &Handler{
		config:        config,
		logger:        log.WithFields(map[string]interface{}{"taskType": TaskType}),
		location:      location,
		market:        market,
		environmental: environmental,
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
		h.failJob(client, job, "PROPERTY_ANALYSIS_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	prop := &input.Property
	if prop.AppraisedValue <= 0 {
		return nil, errors.NewValidationError(
			"property.appraisedValue",
			fmt.Sprintf("appraised value must be positive, got %.2f", prop.AppraisedValue),
		)
	}

	components := make(map[string]ComponentScore, 5)
	requirements := []string{}
	unavailableSignals := 0

	locSignal, err := h.location.LocationRisk(ctx, prop.City, prop.State, prop.ZipCode)
	if err != nil {
		return nil, errors.NewProviderTimeoutError("location", err.Error())
	}
	if !locSignal.Available {
		unavailableSignals++
	}
	components["location"] = ComponentScore{
		Score:     locSignal.RiskScore,
		RiskLevel: programs.PropertyRiskLevel("location", locSignal.RiskScore),
		Weight:    programs.PropertyWeightLocation,
		Available: locSignal.Available,
		Factors:   locSignal.Factors,
	}

	mktSignal, err := h.market.MarketRisk(ctx, prop.City, prop.State, prop.ZipCode)
	if err != nil {
		return nil, errors.NewProviderTimeoutError("market", err.Error())
	}
	if !mktSignal.Available {
		unavailableSignals++
	}
	components["market"] = ComponentScore{
		Score:     mktSignal.RiskScore,
		RiskLevel: programs.PropertyRiskLevel("market", mktSignal.RiskScore),
		Weight:    programs.PropertyWeightMarket,
		Available: mktSignal.Available,
		Factors:   mktSignal.Factors,
	}

	envSignal, err := h.environmental.EnvironmentalHazards(ctx, prop.City, prop.State, prop.ZipCode)
	if err != nil {
		return nil, errors.NewProviderTimeoutError("environmental", err.Error())
	}
	if !envSignal.Available {
		unavailableSignals++
	}
	hazards, envScore := scoreHazards(envSignal.Hazards)
	components["environmental"] = ComponentScore{
		Score:     envScore,
		RiskLevel: programs.PropertyRiskLevel("environmental", envScore),
		Weight:    programs.PropertyWeightEnvironmental,
		Available: envSignal.Available,
	}
	for _, hz := range hazards {
		if hz.Severity == "high" {
			requirements = append(requirements, hz.Mitigation)
		}
	}

	conditionScore, majorIssues, minorIssues := scoreCondition(prop)
	components["condition"] = ComponentScore{
		Score:     conditionScore,
		RiskLevel: programs.PropertyRiskLevel("condition", conditionScore),
		Weight:    programs.PropertyWeightCondition,
		Available: true,
	}
	for _, issue := range majorIssues {
		requirements = append(requirements,
			fmt.Sprintf("Resolve inspection finding before closing: %s", issue))
	}

	financialScore, financialFactors := scoreFinancial(prop, input.MonthlyIncome)
	components["financial"] = ComponentScore{
		Score:     financialScore,
		RiskLevel: programs.PropertyRiskLevel("financial", financialScore),
		Weight:    programs.PropertyWeightFinancial,
		Available: true,
		Factors:   financialFactors,
	}

	overall := round2(
		components["location"].Score*programs.PropertyWeightLocation +
			components["condition"].Score*programs.PropertyWeightCondition +
			components["market"].Score*programs.PropertyWeightMarket +
			components["environmental"].Score*programs.PropertyWeightEnvironmental +
			components["financial"].Score*programs.PropertyWeightFinancial)
	overallLevel := programs.PropertyRiskLevel("overall", overall)

	output := &Output{
		ApplicationID:         input.ApplicationID,
		OverallScore:          overall,
		OverallRiskLevel:      overallLevel,
		Components:            components,
		Hazards:               hazards,
		MajorIssues:           majorIssues,
		MinorIssues:           minorIssues,
		MandatoryRequirements: requirements,
		MarketTrend:           mktSignal.Trend,
		Confidence:            confidence(unavailableSignals, prop),
		Result:                buildCategoryResult(overall, overallLevel, components, hazards, requirements),
	}

	h.logger.Info("property risk analyzed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"overallScore":  overall,
		"riskLevel":     overallLevel,
		"hazardCount":   len(hazards),
		"confidence":    output.Confidence,
	})

	return output, nil
}

// scoreHazards sums the table scores for present hazards, capped at 100.
// Unknown hazard names are ignored.
func scoreHazards(names []string) ([]HazardFinding, float64) {
	findings := []HazardFinding{}
	var score float64
	for _, name := range names {
		hazard, ok := programs.EnvironmentalHazards[strings.ToLower(name)]
		if !ok {
			continue
		}
		findings = append(findings, HazardFinding{
			Hazard:     strings.ToLower(name),
			Score:      hazard.Score,
			Severity:   hazard.Severity,
			Mitigation: hazard.Mitigation,
		})
		score += hazard.Score
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].Score > findings[j].Score })
	return findings, math.Min(score, 100)
}

// scoreCondition builds the condition score: age band scaled by property
// type, plus inspection issue penalties, capped at 100.
func scoreCondition(prop *models.PropertyRecord) (float64, []string, []string) {
	base := unknownAgeScore
	if prop.YearBuilt > 0 {
		age := time.Now().Year() - prop.YearBuilt
		if age < 0 {
			age = 0
		}
		base = programs.AgeRiskScore(age)
	}
	score := base * programs.PropertyTypeMultiplier(prop.PropertyType)

	var major, minor []string
	for _, issue := range prop.InspectionIssues {
		if isMajorIssue(issue) {
			major = append(major, issue)
			score += programs.MajorIssuePenalty
		} else {
			minor = append(minor, issue)
			score += programs.MinorIssuePenalty
		}
	}
	return math.Min(round2(score), 100), major, minor
}

func isMajorIssue(issue string) bool {
	lower := strings.ToLower(issue)
	for _, keyword := range programs.MajorIssueKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// scoreFinancial penalizes heavy carrying costs: property tax rate, HOA
// dues, and the total carrying cost relative to income.
func scoreFinancial(prop *models.PropertyRecord, monthlyIncome float64) (float64, []string) {
	var score float64
	factors := []string{}

	taxRate := prop.AnnualTaxes / prop.AppraisedValue
	switch {
	case taxRate >= programs.TaxRatePenaltyHigh:
		score += 30
		factors = append(factors, fmt.Sprintf("property tax rate %.2f%% is very high", taxRate*100))
	case taxRate >= programs.TaxRatePenaltyMedium:
		score += 20
		factors = append(factors, fmt.Sprintf("property tax rate %.2f%% is high", taxRate*100))
	case taxRate >= programs.TaxRatePenaltyLow:
		score += 10
		factors = append(factors, fmt.Sprintf("property tax rate %.2f%% is above average", taxRate*100))
	}

	switch {
	case prop.MonthlyHOA >= programs.HOAPenaltyHigh:
		score += 25
		factors = append(factors, fmt.Sprintf("HOA dues $%.0f/month are very high", prop.MonthlyHOA))
	case prop.MonthlyHOA >= programs.HOAPenaltyMedium:
		score += 15
		factors = append(factors, fmt.Sprintf("HOA dues $%.0f/month are high", prop.MonthlyHOA))
	case prop.MonthlyHOA >= programs.HOAPenaltyLow:
		score += 8
	}

	if monthlyIncome > 0 {
		carrying := prop.AnnualTaxes/12 + prop.MonthlyHOA + prop.AnnualInsurance/12
		if carrying/monthlyIncome > programs.CarryingCostRatioLimit {
			score += 25
			factors = append(factors, "carrying costs exceed 15% of monthly income")
		}
	}

	return math.Min(score, 100), factors
}

// confidence starts at 90 and drops 15 for each unavailable external
// signal and 10 when the build year is unknown, floored at 40.
func confidence(unavailableSignals int, prop *models.PropertyRecord) float64 {
	score := 90.0 - float64(unavailableSignals)*15
	if prop.YearBuilt <= 0 {
		score -= 10
	}
	return math.Max(score, 40)
}

func buildCategoryResult(overall float64, level models.RiskLevel,
	components map[string]ComponentScore, hazards []HazardFinding, requirements []string) models.CategoryResult {

	result := models.NewCategoryResult("property", overall, level)

	for _, name := range []string{"location", "condition", "market", "environmental", "financial"} {
		component := components[name]
		if component.RiskLevel == models.RiskHigh {
			result.Indicators = append(result.Indicators,
				fmt.Sprintf("%s risk is high (%.0f)", name, component.Score))
		}
	}
	for _, hz := range hazards {
		result.Indicators = append(result.Indicators,
			fmt.Sprintf("%s hazard zone (%s severity)", hz.Hazard, hz.Severity))
	}

	result.Recommendations = append(result.Recommendations, requirements...)
	if level == models.RiskHigh {
		result.Recommendations = append(result.Recommendations,
			"Order a full appraisal review before approval")
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
