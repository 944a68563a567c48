// internal/workers/application/check-readiness-score/models.go
package checkreadinessscore

import "mortgage-workers/internal/models"

type Input struct {
	Application models.ApplicationRecord `json:"application"`
}

type Output struct {
	ReadinessScore int            `json:"readinessScore"`
	ReadinessLevel string         `json:"readinessLevel"`
	ScoreBreakdown ScoreBreakdown `json:"readinessBreakdown"`
	MissingItems   []string       `json:"missingItems"`
}

type ScoreBreakdown struct {
	Credit        int `json:"credit"`
	Income        int `json:"income"`
	Property      int `json:"property"`
	Documentation int `json:"documentation"`
}
