// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "mortgage-workers/internal/models"

type Input struct {
	Application models.ApplicationRecord `json:"application"`
	Decision    *models.DecisionResult   `json:"decisionResult,omitempty"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	DecisionPersisted bool   `json:"decisionPersisted"`
	AuditIndexed      bool   `json:"auditIndexed"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
