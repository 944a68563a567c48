// internal/workers/data-access/query-postgresql/handler_test.go
package querypostgresql

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"mortgage-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) {
	l.t.Logf("DEBUG: %s %v", msg, fields)
}

func (l *testLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *testLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *testLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *testLogger) WithFields(fields map[string]interface{}) logger.Logger { return l }
func (l *testLogger) WithError(err error) logger.Logger                      { return l }
func (l *testLogger) With(fields map[string]interface{}) logger.Logger       { return l }

func createTestConfig() *Config {
	return &Config{Timeout: 30 * time.Second}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func createTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	return NewHandler(createTestConfig(), db, &testLogger{t: t}), mock
}

// ==========================
// Application Query Tests
// ==========================

func TestExecute_ApplicationFullDetails(t *testing.T) {
	handler, mock := createTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"id", "borrower_name", "loan_program", "loan_amount",
		"application_data", "status", "created_at", "updated_at",
	}).AddRow(
		"APP-2024-0042", "Jane Applicant", "conventional", 400000.0,
		"{}", "approved", "2024-06-01T10:00:00Z", "2024-06-15T12:00:00Z",
	)
	mock.ExpectQuery(`SELECT id, borrower_name, loan_program`).
		WithArgs("APP-2024-0042").
		WillReturnRows(rows)

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationFullDetails),
		ApplicationID: "APP-2024-0042",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, output.RowCount)
	data := output.Data.(map[string]interface{})
	assert.Equal(t, "Jane Applicant", data["borrowerName"])
	assert.Equal(t, 400000.0, data["loanAmount"])
	assert.Equal(t, "approved", data["status"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_ApplicationDecision(t *testing.T) {
	handler, mock := createTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"application_id", "decision", "total_score", "risk_grade",
		"pricing_tier", "decision_data", "decided_at",
	}).AddRow(
		"APP-2024-0042", "approve", 92.0, "A",
		"PRIME", "{}", "2024-06-15T12:00:00Z",
	)
	mock.ExpectQuery(`SELECT application_id, decision, total_score`).
		WithArgs("APP-2024-0042").
		WillReturnRows(rows)

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationDecision),
		ApplicationID: "APP-2024-0042",
	})
	require.NoError(t, err)

	data := output.Data.(map[string]interface{})
	assert.Equal(t, "approve", data["decision"])
	assert.Equal(t, 92.0, data["totalScore"])
	assert.Equal(t, "A", data["riskGrade"])
}

func TestExecute_ApplicationsByStatus(t *testing.T) {
	handler, mock := createTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"id", "borrower_name", "loan_program", "loan_amount", "status", "created_at",
	}).
		AddRow("APP-1", "Jane Applicant", "conventional", 400000.0, "pending", "2024-06-01T10:00:00Z").
		AddRow("APP-2", "Sam Borrower", "fha", 250000.0, "pending", "2024-06-02T10:00:00Z")
	mock.ExpectQuery(`SELECT id, borrower_name, loan_program`).
		WithArgs("pending").
		WillReturnRows(rows)

	output, err := handler.Execute(context.Background(), &Input{
		QueryType: string(QueryTypeApplicationsByStatus),
		Filters:   map[string]interface{}{"status": "pending"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.RowCount)
}

func TestExecute_ApplicationSummaries(t *testing.T) {
	handler, mock := createTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"id", "borrower_name", "loan_program", "loan_amount", "status",
	}).
		AddRow("APP-1", "Jane Applicant", "conventional", 400000.0, "approved").
		AddRow("APP-2", "Sam Borrower", "fha", 250000.0, "denied")
	mock.ExpectQuery(`SELECT id, borrower_name, loan_program`).
		WithArgs("APP-1", "APP-2").
		WillReturnRows(rows)

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:      string(QueryTypeApplicationSummaries),
		ApplicationIDs: []string{"APP-1", "APP-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, output.RowCount)
	results := output.Data.([]map[string]interface{})
	assert.Equal(t, "APP-1", results[0]["id"])
	assert.Equal(t, "denied", results[1]["status"])
}

func TestExecute_BorrowerProfile(t *testing.T) {
	handler, mock := createTestHandler(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "relationship_tier", "active_applications", "created_at",
	}).AddRow(
		"borrower-001", "Jane Applicant", "jane@example.com", "preferred", 2, "2023-01-15T09:00:00Z",
	)
	mock.ExpectQuery(`SELECT id, name, email, relationship_tier`).
		WithArgs("borrower-001").
		WillReturnRows(rows)

	output, err := handler.Execute(context.Background(), &Input{
		QueryType:  string(QueryTypeBorrowerProfile),
		BorrowerID: "borrower-001",
	})
	require.NoError(t, err)

	data := output.Data.(map[string]interface{})
	assert.Equal(t, "preferred", data["relationshipTier"])
	assert.Equal(t, 2, data["activeApplications"])
}

// ==========================
// Error Handling Tests
// ==========================

func TestExecute_InvalidQueryType(t *testing.T) {
	handler, _ := createTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		QueryType: "loan_officer_details",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQueryType))
}

func TestExecute_MissingParam(t *testing.T) {
	handler, _ := createTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		QueryType: string(QueryTypeApplicationFullDetails),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryExecutionFailed))
}

func TestExecute_QueryError(t *testing.T) {
	handler, mock := createTestHandler(t)

	mock.ExpectQuery(`SELECT id, borrower_name`).
		WithArgs("APP-404").
		WillReturnError(sql.ErrNoRows)

	_, err := handler.Execute(context.Background(), &Input{
		QueryType:     string(QueryTypeApplicationFullDetails),
		ApplicationID: "APP-404",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryExecutionFailed))
}

func TestExecute_NilInput(t *testing.T) {
	handler, _ := createTestHandler(t)

	_, err := handler.Execute(context.Background(), nil)
	assert.Error(t, err)
}

// ==========================
// Benchmark
// ==========================

func BenchmarkExecute(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, logger.NewNoOpLogger())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rows := sqlmock.NewRows([]string{
			"id", "borrower_name", "loan_program", "loan_amount",
			"application_data", "status", "created_at", "updated_at",
		}).AddRow("APP-1", "Jane Applicant", "conventional", 400000.0, "{}", "approved", "t", "t")
		mock.ExpectQuery(`SELECT id, borrower_name`).WillReturnRows(rows)

		_, _ = handler.Execute(context.Background(), &Input{
			QueryType:     string(QueryTypeApplicationFullDetails),
			ApplicationID: "APP-1",
		})
	}
}
