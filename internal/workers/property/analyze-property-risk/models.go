// internal/workers/property/analyze-property-risk/models.go
package analyzepropertyrisk

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID string               `json:"applicationId"`
	Property      models.PropertyRecord `json:"property"`
	MonthlyIncome float64              `json:"totalMonthlyIncome,omitempty"`
}

// ComponentScore is one weighted slice of the property risk composite.
type ComponentScore struct {
	Score     float64          `json:"score"`
	RiskLevel models.RiskLevel `json:"riskLevel"`
	Weight    float64          `json:"weight"`
	Available bool             `json:"dataAvailable"`
	Factors   []string         `json:"factors,omitempty"`
}

// HazardFinding is one environmental hazard present at the property.
type HazardFinding struct {
	Hazard     string  `json:"hazard"`
	Score      float64 `json:"score"`
	Severity   string  `json:"severity"`
	Mitigation string  `json:"mitigation"`
}

type Output struct {
	ApplicationID         string                    `json:"applicationId"`
	OverallScore          float64                   `json:"overallScore"`
	OverallRiskLevel      models.RiskLevel          `json:"overallRiskLevel"`
	Components            map[string]ComponentScore `json:"components"`
	Hazards               []HazardFinding           `json:"hazards"`
	MajorIssues           []string                  `json:"majorIssues,omitempty"`
	MinorIssues           []string                  `json:"minorIssues,omitempty"`
	MandatoryRequirements []string                  `json:"mandatoryRequirements"`
	MarketTrend           string                    `json:"marketTrend,omitempty"`
	Confidence            float64                   `json:"confidence"`
	Result                models.CategoryResult     `json:"propertyResult"`
}
