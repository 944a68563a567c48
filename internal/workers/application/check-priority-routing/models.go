// internal/workers/application/check-priority-routing/models.go
package checkpriorityrouting

import "mortgage-workers/internal/models"

type Input struct {
	ApplicationID string             `json:"applicationId"`
	BorrowerID    string             `json:"borrowerId,omitempty"`
	LoanAmount    float64            `json:"loanAmount"`
	Program       models.LoanProgram `json:"program,omitempty"`
}

type Output struct {
	IsPriorityClient  bool   `json:"isPriorityClient"`
	RoutingPriority   string `json:"routingPriority"`
	UnderwritingQueue string `json:"underwritingQueue"`
}

// Borrower relationship tiers maintained by the servicing database.
const (
	TierPrivateClient = "private_client"
	TierPreferred     = "preferred"
	TierStandard      = "standard"
)

// Priority levels
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Underwriting queues
const (
	QueueSeniorUnderwriting   = "senior-underwriting"
	QueueManualReview         = "manual-review"
	QueueStandardUnderwriting = "standard-underwriting"
)
