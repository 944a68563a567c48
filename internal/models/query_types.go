// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeApplicationFullDetails QueryType = "application_full_details"
	QueryTypeApplicationDecision    QueryType = "application_decision"
	QueryTypeApplicationsByStatus   QueryType = "applications_by_status"
	QueryTypeApplicationSummaries   QueryType = "application_summaries"
	QueryTypeBorrowerProfile        QueryType = "borrower_profile"
)
