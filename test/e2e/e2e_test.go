// test/e2e/e2e_test.go

// End-to-end test for the loan processing pipeline against real backing
// services. Requires PostgreSQL, Elasticsearch, and Redis running
// locally (docker compose up). Stage handlers are exercised directly
// through their Execute wrappers; a Zeebe broker is not required.
package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "github.com/lib/pq"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
	"mortgage-workers/internal/pipeline"

	checkpriorityrouting "mortgage-workers/internal/workers/application/check-priority-routing"
	createapplicationrecord "mortgage-workers/internal/workers/application/create-application-record"
	queryelasticsearch "mortgage-workers/internal/workers/data-access/query-elasticsearch"
	querypostgresql "mortgage-workers/internal/workers/data-access/query-postgresql"
)

var zapLog *zap.Logger

func TestMain(m *testing.M) {
	zapLog = logger.New("info", "console")
	code := m.Run()
	zapLog.Sync()
	os.Exit(code)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func connectPostgres(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "mortgage"),
		envOr("DB_PASSWORD", "mortgage"),
		envOr("DB_NAME", "mortgage"),
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("PostgreSQL not reachable: %v", err)
	}
	return db
}

func connectElasticsearch(t *testing.T) *elasticsearch.Client {
	t.Helper()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{envOr("ES_URL", "http://localhost:9200")},
	})
	if err != nil {
		t.Skipf("Elasticsearch client: %v", err)
	}
	res, err := client.Ping()
	if err != nil {
		t.Skipf("Elasticsearch not reachable: %v", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		t.Skipf("Elasticsearch ping returned %s", res.Status())
	}
	return client
}

func connectRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: envOr("REDIS_ADDR", "localhost:6379")})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not reachable: %v", err)
	}
	return client
}

func setupSchema(t *testing.T, db *sql.DB) {
	t.Helper()
	statements := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id VARCHAR(255) PRIMARY KEY,
			borrower_name VARCHAR(255) NOT NULL,
			loan_program VARCHAR(50),
			loan_amount NUMERIC(14,2),
			application_data JSONB,
			status VARCHAR(50) NOT NULL DEFAULT 'submitted',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			application_id VARCHAR(255) PRIMARY KEY REFERENCES applications(id),
			decision VARCHAR(50) NOT NULL,
			total_score NUMERIC(6,2),
			risk_grade VARCHAR(10),
			pricing_tier VARCHAR(20),
			decision_data JSONB,
			decided_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS borrowers (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			relationship_tier VARCHAR(50) NOT NULL DEFAULT 'standard',
			active_applications INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err := db.Exec(
		`INSERT INTO borrowers (id, name, email, relationship_tier, active_applications)
		 VALUES ('BOR-E2E-001', 'Jane Applicant', 'jane.applicant@example.com', 'private_client', 1)
		 ON CONFLICT (id) DO UPDATE SET relationship_tier = 'private_client'`)
	require.NoError(t, err)
}

func cleanupApplication(db *sql.DB, appID string) {
	db.Exec(`DELETE FROM decisions WHERE application_id = $1`, appID)
	db.Exec(`DELETE FROM applications WHERE id = $1`, appID)
}

func testApplication(appID string) models.ApplicationRecord {
	return models.ApplicationRecord{
		ApplicationID: appID,
		Borrower: models.BorrowerInfo{
			Name:           "Jane Applicant",
			FirstName:      "Jane",
			LastName:       "Applicant",
			SSN:            "123-45-6789",
			DateOfBirth:    "1988-04-12",
			Nationality:    "US",
			PhoneNumber:    "+16145550123",
			Email:          "jane.applicant@example.com",
			CurrentAddress: "12 Maple Street, Columbus, OH 43004",
			AnnualIncome:   96000,
			IncomeVerified: true,
		},
		CreditScores: []models.CreditScoreEntry{
			{Bureau: "equifax", ScoreType: "fico", ScoreValue: 762},
			{Bureau: "experian", ScoreType: "fico", ScoreValue: 758},
			{Bureau: "transunion", ScoreType: "fico", ScoreValue: 755},
		},
		IncomeSources: []models.IncomeSourceEntry{
			{
				SourceType:           models.IncomeBaseSalary,
				Employer:             "Acme Corp",
				Amount:               8000,
				Frequency:            models.FrequencyMonthly,
				IsContinuing:         true,
				StabilityMonths:      48,
				DocumentationQuality: "excellent",
			},
		},
		Debts: []models.DebtObligationEntry{
			{DebtType: models.DebtAutoLoan, Creditor: "Motor Credit", MonthlyPayment: 350, CurrentBalance: 14000, RemainingMonths: 40},
			{DebtType: models.DebtCreditCard, Creditor: "Big Bank", MonthlyPayment: 120, CurrentBalance: 2400, IsRevolving: true},
		},
		Property: models.PropertyRecord{
			AppraisedValue:  500000,
			PurchasePrice:   500000,
			PropertyType:    models.PropertySingleFamily,
			YearBuilt:       2005,
			Address:         "88 Orchard Lane",
			City:            "Columbus",
			State:           "OH",
			ZipCode:         "43004",
			AnnualTaxes:     5400,
			AnnualInsurance: 1500,
		},
		Loan: models.LoanRequest{
			LoanAmount:              400000,
			Program:                 models.LoanProgramConventional,
			Purpose:                 models.LoanPurposePurchase,
			TermMonths:              360,
			DownPayment:             100000,
			EstimatedHousingPayment: 2600,
		},
		Documents: []models.DocumentRecord{
			{DocumentID: "DOC-1", DocumentType: "pay_stub", ValidationStatus: models.ValidationStatusValid,
				ExtractedData: map[string]interface{}{"name": "Jane Applicant", "employer": "Acme Corp"}},
			{DocumentID: "DOC-2", DocumentType: "w2", ValidationStatus: models.ValidationStatusValid,
				ExtractedData: map[string]interface{}{"name": "Jane Applicant", "wages": 96000.0}},
			{DocumentID: "DOC-3", DocumentType: "bank_statement", ValidationStatus: models.ValidationStatusValid},
			{DocumentID: "DOC-4", DocumentType: "purchase_contract", ValidationStatus: models.ValidationStatusValid,
				ExtractedData: map[string]interface{}{"purchasePrice": 500000.0}},
		},
		SubmittedAt: "2024-06-01T09:00:00Z",
	}
}

// TestFullE2E drives one application through scoring and decisioning,
// routes it, persists it, and reads it back through both query workers.
func TestFullE2E(t *testing.T) {
	db := connectPostgres(t)
	defer db.Close()
	esClient := connectElasticsearch(t)
	redisClient := connectRedis(t)
	defer redisClient.Close()

	setupSchema(t, db)

	log := logger.NewZapAdapter(zapLog)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	appID := fmt.Sprintf("APP-E2E-%d", time.Now().UnixNano())
	cleanupApplication(db, appID)
	defer cleanupApplication(db, appID)

	// Score and decide in-process.
	runner := pipeline.NewRunner(log)
	result, err := runner.Run(ctx, testApplication(appID))
	require.NoError(t, err)
	require.NotNil(t, result.Decision)
	decision := result.Decision.Decision
	t.Logf("decision=%s score=%.1f grade=%s",
		decision.Decision, decision.TotalScore, decision.RiskGrade)
	assert.Contains(t,
		[]models.DecisionType{models.DecisionApprove, models.DecisionConditional},
		decision.Decision)

	// Priority routing against Postgres, cached in Redis.
	cprHandler := checkpriorityrouting.NewHandler(
		checkpriorityrouting.LoadConfig(), db, redisClient, log)
	routingInput := &checkpriorityrouting.Input{
		ApplicationID: appID,
		BorrowerID:    "BOR-E2E-001",
		LoanAmount:    400000,
		Program:       models.LoanProgramConventional,
	}
	routing, err := cprHandler.Execute(ctx, routingInput)
	require.NoError(t, err)
	assert.True(t, routing.IsPriorityClient)
	assert.Equal(t, checkpriorityrouting.PriorityHigh, routing.RoutingPriority)

	// Second call must be served from the cache with the same answer.
	cached, err := cprHandler.Execute(ctx, routingInput)
	require.NoError(t, err)
	assert.Equal(t, routing.RoutingPriority, cached.RoutingPriority)
	assert.Equal(t, routing.UnderwritingQueue, cached.UnderwritingQueue)

	// Persist the application and decision, with the audit document
	// indexed into Elasticsearch.
	carHandler := createapplicationrecord.NewHandlerWithAudit(
		createapplicationrecord.LoadConfig(), db,
		createapplicationrecord.NewElasticsearchAuditIndexer(esClient), log)
	record, err := carHandler.Execute(ctx, &createapplicationrecord.Input{
		Application: testApplication(appID),
		Decision:    &decision,
	})
	require.NoError(t, err)
	assert.Equal(t, appID, record.ApplicationID)
	assert.True(t, record.DecisionPersisted)
	assert.True(t, record.AuditIndexed)

	// A duplicate insert must be rejected.
	_, err = carHandler.Execute(ctx, &createapplicationrecord.Input{
		Application: testApplication(appID),
	})
	require.Error(t, err)

	// Read back through the PostgreSQL query worker.
	qpHandler := querypostgresql.NewHandler(querypostgresql.LoadConfig(), db, log)
	full, err := qpHandler.Execute(ctx, &querypostgresql.Input{
		QueryType:     string(models.QueryTypeApplicationFullDetails),
		ApplicationID: appID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, full.RowCount)

	decisionRow, err := qpHandler.Execute(ctx, &querypostgresql.Input{
		QueryType:     string(models.QueryTypeApplicationDecision),
		ApplicationID: appID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, decisionRow.RowCount)

	profile, err := qpHandler.Execute(ctx, &querypostgresql.Input{
		QueryType:  string(models.QueryTypeBorrowerProfile),
		BorrowerID: "BOR-E2E-001",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, profile.RowCount)

	// The audit document becomes searchable after an index refresh.
	time.Sleep(1500 * time.Millisecond)

	qeHandler := queryelasticsearch.NewHandler(queryelasticsearch.LoadConfig(), esClient, log)
	search, err := qeHandler.Execute(ctx, &queryelasticsearch.Input{
		IndexName: "loan-decision-audit",
		QueryType: "decision_audit_search",
		Filters:   map[string]interface{}{"keywords": appID},
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, search.TotalHits, int64(1))
}
