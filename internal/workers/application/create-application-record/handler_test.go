// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"errors"
	"testing"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

type testLogger struct {
	t *testing.T
}

func (l *testLogger) Debug(msg string, fields map[string]interface{}) { l.t.Logf("DEBUG: %s %v", msg, fields) }
func (l *testLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *testLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *testLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *testLogger) WithFields(fields map[string]interface{}) logger.Logger { return l }
func (l *testLogger) WithError(err error) logger.Logger                      { return l }
func (l *testLogger) With(fields map[string]interface{}) logger.Logger       { return l }

type stubAuditIndexer struct {
	indexed []string
	err     error
}

func (s *stubAuditIndexer) Index(_ context.Context, documentID string, _ interface{}) error {
	if s.err != nil {
		return s.err
	}
	s.indexed = append(s.indexed, documentID)
	return nil
}

func createTestConfig() *Config {
	return LoadConfig()
}

func createTestInput() *Input {
	return &Input{
		Application: models.ApplicationRecord{
			ApplicationID: "APP-2024-001",
			Borrower:      models.BorrowerInfo{Name: "Jane Applicant"},
			Loan: models.LoanRequest{
				LoanAmount: 400000,
				Program:    models.LoanProgramConventional,
			},
		},
		Decision: &models.DecisionResult{
			ApplicationID: "APP-2024-001",
			Decision:      models.DecisionApprove,
			TotalScore:    92,
			RiskGrade:     models.GradeA,
			PricingTier:   models.TierPrime,
			DecidedAt:     "2024-06-15T12:00:00Z",
		},
	}
}

func expectDuplicateCheck(mock sqlmock.Sqlmock, appID string, exists bool) {
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(appID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

// ==========================
// Persistence Tests
// ==========================

func TestExecute_PersistsApplicationAndDecision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	audit := &stubAuditIndexer{}
	handler := NewHandlerWithAudit(createTestConfig(), db, audit, &testLogger{t: t})

	expectDuplicateCheck(mock, "APP-2024-001", false)
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs("APP-2024-001", "Jane Applicant", "conventional", 400000.0,
			sqlmock.AnyArg(), "approved", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO decisions`).
		WithArgs("APP-2024-001", "approve", 92.0, "A", "PRIME",
			sqlmock.AnyArg(), "2024-06-15T12:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, "APP-2024-001", output.ApplicationID)
	assert.Equal(t, "approved", output.ApplicationStatus)
	assert.True(t, output.DecisionPersisted)
	assert.True(t, output.AuditIndexed)
	assert.Equal(t, []string{"APP-2024-001"}, audit.indexed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NoDecisionStoresSubmitted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &testLogger{t: t})

	input := createTestInput()
	input.Decision = nil

	expectDuplicateCheck(mock, "APP-2024-001", false)
	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs("APP-2024-001", "Jane Applicant", "conventional", 400000.0,
			sqlmock.AnyArg(), "submitted", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "submitted", output.ApplicationStatus)
	assert.False(t, output.DecisionPersisted)
	assert.False(t, output.AuditIndexed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_GeneratesIDWhenMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &testLogger{t: t})

	input := createTestInput()
	input.Application.ApplicationID = ""
	input.Decision = nil

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, output.ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RejectsDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &testLogger{t: t})

	expectDuplicateCheck(mock, "APP-2024-001", true)

	_, err = handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateApplication))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InsertFailureIsRetryable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &testLogger{t: t})

	expectDuplicateCheck(mock, "APP-2024-001", false)
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnError(errors.New("connection reset"))

	_, err = handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
}

func TestExecute_DecisionInsertFailureFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, &testLogger{t: t})

	expectDuplicateCheck(mock, "APP-2024-001", false)
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO decisions`).
		WillReturnError(errors.New("constraint violation"))

	_, err = handler.Execute(context.Background(), createTestInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabaseInsertFailed))
}

func TestExecute_AuditFailureDoesNotFailJob(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	audit := &stubAuditIndexer{err: errors.New("cluster unavailable")}
	handler := NewHandlerWithAudit(createTestConfig(), db, audit, &testLogger{t: t})

	input := createTestInput()
	input.Decision = nil

	expectDuplicateCheck(mock, "APP-2024-001", false)
	mock.ExpectExec(`INSERT INTO applications`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, output.AuditIndexed)
}

// ==========================
// Status Mapping Tests
// ==========================

func TestStatusForDecision(t *testing.T) {
	tests := []struct {
		decision models.DecisionType
		want     string
	}{
		{models.DecisionApprove, "approved"},
		{models.DecisionConditional, "conditionally_approved"},
		{models.DecisionDeny, "denied"},
		{models.DecisionPending, "pending"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForDecision(tt.decision))
	}
}
