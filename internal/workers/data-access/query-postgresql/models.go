// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "mortgage-workers/internal/models"

type Input struct {
	QueryType      string                 `json:"queryType"`
	ApplicationID  string                 `json:"applicationId,omitempty"`
	ApplicationIDs []string               `json:"applicationIds,omitempty"`
	BorrowerID     string                 `json:"borrowerId,omitempty"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

// Export constants for external use
var (
	QueryTypeApplicationFullDetails = models.QueryTypeApplicationFullDetails
	QueryTypeApplicationDecision    = models.QueryTypeApplicationDecision
	QueryTypeApplicationsByStatus   = models.QueryTypeApplicationsByStatus
	QueryTypeApplicationSummaries   = models.QueryTypeApplicationSummaries
	QueryTypeBorrowerProfile        = models.QueryTypeBorrowerProfile
)
