package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ElasticsearchQuery defines the structure of a query request
type ElasticsearchQuery struct {
	Index         string
	QueryType     string
	Filters       map[string]interface{}
	ApplicationID string
	Program       string
	Pagination    struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "decision_audit_search":
		queryBody = buildDecisionAuditQuery(eq)
	case "similar_applications":
		queryBody = buildSimilarApplicationsQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &eq.Pagination.From,
		Size:   &eq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildDecisionAuditQuery builds the audit trail search over persisted decisions.
func buildDecisionAuditQuery(eq ElasticsearchQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Free-text search over borrower and application identifiers
	if keywords, ok := eq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"borrower_name^3", "application_id^2", "denial_reasons"},
				"type":   "best_fields",
			},
		})
	}

	if decision, ok := eq.Filters["decision"].(string); ok && decision != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"decision": decision},
		})
	}

	if riskGrade, ok := eq.Filters["riskGrade"].(string); ok && riskGrade != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"risk_grade": riskGrade},
		})
	}

	if program, ok := eq.Filters["program"].(string); ok && program != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"loan_program": program},
		})
	} else if eq.Program != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"loan_program": eq.Program},
		})
	}

	if scoreRange, ok := eq.Filters["scoreRange"].(map[string]interface{}); ok {
		rangeClause := map[string]interface{}{}
		if min, ok := asFloat(scoreRange["min"]); ok {
			rangeClause["gte"] = min
		}
		if max, ok := asFloat(scoreRange["max"]); ok {
			rangeClause["lte"] = max
		}
		if len(rangeClause) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"total_score": rangeClause},
			})
		}
	}

	if dateRange, ok := eq.Filters["decidedRange"].(map[string]interface{}); ok {
		rangeClause := map[string]interface{}{}
		if from, ok := dateRange["from"].(string); ok && from != "" {
			rangeClause["gte"] = from
		}
		if to, ok := dateRange["to"].(string); ok && to != "" {
			rangeClause["lte"] = to
		}
		if len(rangeClause) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{"decided_at": rangeClause},
			})
		}
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	if sortBy, ok := eq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "decided_at":
			query["sort"] = []map[string]interface{}{{"decided_at": "desc"}}
		case "total_score":
			query["sort"] = []map[string]interface{}{{"total_score": "desc"}}
		}
	}

	return query
}

// buildSimilarApplicationsQuery finds decisions that resemble a given application.
func buildSimilarApplicationsQuery(eq ElasticsearchQuery) map[string]interface{} {
	if eq.ApplicationID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"borrower_name", "loan_program", "risk_grade", "denial_reasons"},
				"like": []map[string]interface{}{
					{"_index": eq.Index, "_id": eq.ApplicationID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
