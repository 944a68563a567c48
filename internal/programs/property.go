// internal/programs/property.go
package programs

import "mortgage-workers/internal/models"

// Component weights for the property risk composite.
const (
	PropertyWeightLocation      = 0.30
	PropertyWeightCondition     = 0.25
	PropertyWeightMarket        = 0.20
	PropertyWeightEnvironmental = 0.15
	PropertyWeightFinancial     = 0.10
)

var propertyTypeMultipliers = map[models.PropertyType]float64{
	models.PropertySingleFamily: 1.0,
	models.PropertyCondo:        1.2,
	models.PropertyTownhouse:    1.1,
	models.PropertyMultiFamily:  1.4,
	models.PropertyManufactured: 1.6,
	models.PropertyCommercial:   1.8,
}

// PropertyTypeMultiplier scales condition risk by property type. Unknown
// types get the most conservative multiplier.
func PropertyTypeMultiplier(t models.PropertyType) float64 {
	if m, ok := propertyTypeMultipliers[t]; ok {
		return m
	}
	return 1.8
}

// ageBand maps a maximum property age to a base condition score.
type ageBand struct {
	MaxAge int
	Score  float64
}

var ageBands = []ageBand{
	{5, 10},
	{15, 20},
	{30, 35},
	{50, 55},
	{75, 75},
	{100, 90},
	{200, 95},
}

// AgeRiskScore returns the base condition score for a property age in
// years.
func AgeRiskScore(age int) float64 {
	for _, b := range ageBands {
		if age <= b.MaxAge {
			return b.Score
		}
	}
	return 95
}

// Inspection issue penalties.
const (
	MajorIssuePenalty = 15.0
	MinorIssuePenalty = 5.0
)

// MajorIssueKeywords mark inspection findings that count as major defects.
var MajorIssueKeywords = []string{
	"structural", "foundation", "roof", "electrical", "plumbing", "hvac",
}

// EnvironmentalHazard describes one hazard type's contribution and
// mitigation guidance.
type EnvironmentalHazard struct {
	Score      float64
	Severity   string
	Mitigation string
}

var EnvironmentalHazards = map[string]EnvironmentalHazard{
	"flood":      {Score: 25, Severity: "high", Mitigation: "Flood insurance required"},
	"earthquake": {Score: 20, Severity: "medium", Mitigation: "Consider earthquake insurance"},
	"hurricane":  {Score: 22, Severity: "high", Mitigation: "Verify windstorm coverage"},
	"tornado":    {Score: 15, Severity: "medium", Mitigation: "Verify windstorm coverage"},
	"wildfire":   {Score: 25, Severity: "high", Mitigation: "Verify fire insurance availability"},
	"sinkhole":   {Score: 18, Severity: "medium", Mitigation: "Order geological survey"},
	"landslide":  {Score: 16, Severity: "medium", Mitigation: "Order geological survey"},
	"coastal":    {Score: 14, Severity: "low", Mitigation: "Review coastal erosion exposure"},
}

// Per-component thresholds for banding a 0-100 component risk score into
// levels. Checked as >= in high/medium/low order.
type ComponentBands struct {
	High   float64
	Medium float64
	Low    float64
}

var propertyComponentBands = map[string]ComponentBands{
	"location":      {High: 70, Medium: 45, Low: 25},
	"market":        {High: 60, Medium: 35, Low: 15},
	"environmental": {High: 50, Medium: 25, Low: 10},
	"condition":     {High: 75, Medium: 50, Low: 25},
	"financial":     {High: 40, Medium: 25, Low: 10},
	"overall":       {High: 70, Medium: 45, Low: 25},
}

// PropertyRiskLevel bands a component score using that component's
// thresholds. Unknown components use the overall bands.
func PropertyRiskLevel(component string, score float64) models.RiskLevel {
	bands, ok := propertyComponentBands[component]
	if !ok {
		bands = propertyComponentBands["overall"]
	}
	switch {
	case score >= bands.High:
		return models.RiskHigh
	case score >= bands.Medium:
		return models.RiskMedium
	case score >= bands.Low:
		return models.RiskLow
	default:
		return models.RiskVeryLow
	}
}

// Financial carrying-cost penalty bands.
const (
	TaxRatePenaltyHigh     = 0.025
	TaxRatePenaltyMedium   = 0.020
	TaxRatePenaltyLow      = 0.015
	HOAPenaltyHigh         = 500.0
	HOAPenaltyMedium       = 300.0
	HOAPenaltyLow          = 150.0
	CarryingCostRatioLimit = 0.15
)
