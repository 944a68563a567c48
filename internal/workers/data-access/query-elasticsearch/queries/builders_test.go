// internal/workers/data-access/query-elasticsearch/queries/builders_test.go
package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAndDecode(t *testing.T, eq ElasticsearchQuery) map[string]interface{} {
	req, err := BuildQuery(nil, eq)
	require.NoError(t, err)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestBuildQuery_RequiresIndex(t *testing.T) {
	_, err := BuildQuery(nil, ElasticsearchQuery{QueryType: "decision_audit_search"})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildQuery_UnknownQueryType(t *testing.T) {
	_, err := BuildQuery(nil, ElasticsearchQuery{Index: "loan-decision-audit", QueryType: "nope"})
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestBuildQuery_MatchAllWithoutKeywords(t *testing.T) {
	body := buildAndDecode(t, ElasticsearchQuery{
		Index:     "loan-decision-audit",
		QueryType: "decision_audit_search",
		Filters:   map[string]interface{}{},
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0].(map[string]interface{}), "match_all")
	assert.NotContains(t, boolQuery, "filter")
}

func TestBuildQuery_DecisionAndGradeFilters(t *testing.T) {
	body := buildAndDecode(t, ElasticsearchQuery{
		Index:     "loan-decision-audit",
		QueryType: "decision_audit_search",
		Filters: map[string]interface{}{
			"decision":  "deny",
			"riskGrade": "F",
		},
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	assert.Len(t, filters, 2)
}

func TestBuildQuery_ScoreRange(t *testing.T) {
	body := buildAndDecode(t, ElasticsearchQuery{
		Index:     "loan-decision-audit",
		QueryType: "decision_audit_search",
		Filters: map[string]interface{}{
			"scoreRange": map[string]interface{}{"min": 60.0, "max": 79.0},
		},
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1)

	rangeClause := filters[0].(map[string]interface{})["range"].(map[string]interface{})
	score := rangeClause["total_score"].(map[string]interface{})
	assert.Equal(t, 60.0, score["gte"])
	assert.Equal(t, 79.0, score["lte"])
}

func TestBuildQuery_ProgramFilterFallsBackToQueryField(t *testing.T) {
	body := buildAndDecode(t, ElasticsearchQuery{
		Index:     "loan-decision-audit",
		QueryType: "decision_audit_search",
		Program:   "jumbo",
		Filters:   map[string]interface{}{},
	})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1)

	term := filters[0].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "jumbo", term["loan_program"])
}

func TestBuildQuery_SimilarApplicationsWithoutID(t *testing.T) {
	body := buildAndDecode(t, ElasticsearchQuery{
		Index:     "loan-decision-audit",
		QueryType: "similar_applications",
		Filters:   map[string]interface{}{},
	})

	query := body["query"].(map[string]interface{})
	assert.Contains(t, query, "match_none")
}

func TestBuildQuery_SimilarApplicationsMoreLikeThis(t *testing.T) {
	body := buildAndDecode(t, ElasticsearchQuery{
		Index:         "loan-decision-audit",
		QueryType:     "similar_applications",
		ApplicationID: "APP-2024-0001",
		Filters:       map[string]interface{}{},
	})

	query := body["query"].(map[string]interface{})
	mlt := query["more_like_this"].(map[string]interface{})
	like := mlt["like"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "APP-2024-0001", like["_id"])
}
