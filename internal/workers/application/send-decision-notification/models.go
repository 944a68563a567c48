// internal/workers/application/send-decision-notification/models.go
package senddecisionnotification

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID string                `json:"applicationId"`
	BorrowerName  string                `json:"borrowerName"`
	Email         string                `json:"email,omitempty"`
	PhoneNumber   string                `json:"phoneNumber,omitempty"`
	Decision      models.DecisionResult `json:"decisionResult"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"notificationStatus"` // "sent", "partial", "failed", "disabled"
	EmailSent      bool   `json:"emailSent"`
	EventPublished bool   `json:"eventPublished"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusPartial  = "partial"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
