// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

const (
	TaskType = "create-application-record"
)

const auditIndexName = "loan-decision-audit"

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
)

// AuditIndexer ships the decision audit document to the search cluster.
// Indexing is best effort: a failed index never fails the job.
type AuditIndexer interface {
	Index(ctx context.Context, documentID string, document interface{}) error
}

type Handler struct {
	config *Config
	db     *sql.DB
	audit  AuditIndexer
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// NewHandlerWithAudit wires an audit indexer alongside the database.
func NewHandlerWithAudit(config *Config, db *sql.DB, audit AuditIndexer, log logger.Logger) *Handler {
	h := NewHandler(config, db, log)
	h.audit = audit
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		} else if errors.Is(err, ErrDuplicateApplication) {
			errorCode = "DUPLICATE_APPLICATION"
			retries = 0
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	appID := input.Application.ApplicationID
	if appID == "" {
		appID = uuid.New().String()
	}

	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE id = $1
		)`, appID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: application %s already exists", ErrDuplicateApplication, appID)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)

	applicationJSON, err := json.Marshal(input.Application)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal application: %v", ErrDatabaseInsertFailed, err)
	}

	status := "submitted"
	if input.Decision != nil {
		status = statusForDecision(input.Decision.Decision)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, borrower_name, loan_program, loan_amount,
			application_data, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		appID,
		input.Application.Borrower.Name,
		string(input.Application.Loan.Program),
		input.Application.Loan.LoanAmount,
		applicationJSON,
		status,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	decisionPersisted := false
	if input.Decision != nil {
		decisionJSON, err := json.Marshal(input.Decision)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal decision: %v", ErrDatabaseInsertFailed, err)
		}

		_, err = h.db.ExecContext(ctx, `
			INSERT INTO decisions (
				application_id, decision, total_score, risk_grade,
				pricing_tier, decision_data, decided_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			appID,
			string(input.Decision.Decision),
			input.Decision.TotalScore,
			string(input.Decision.RiskGrade),
			string(input.Decision.PricingTier),
			decisionJSON,
			input.Decision.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: decision insert failed: %v", ErrDatabaseInsertFailed, err)
		}
		decisionPersisted = true
	}

	auditIndexed := h.indexAudit(ctx, appID, input, status, createdAt)

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId":     appID,
		"borrower":          input.Application.Borrower.Name,
		"status":            status,
		"decisionPersisted": decisionPersisted,
		"auditIndexed":      auditIndexed,
	})

	return &Output{
		ApplicationID:     appID,
		ApplicationStatus: status,
		DecisionPersisted: decisionPersisted,
		AuditIndexed:      auditIndexed,
		CreatedAt:         createdAt,
	}, nil
}

// indexAudit ships the audit document. Failures are logged, never fatal.
func (h *Handler) indexAudit(ctx context.Context, appID string, input *Input, status, createdAt string) bool {
	if h.audit == nil {
		return false
	}

	document := map[string]interface{}{
		"eventType":     "application_recorded",
		"applicationId": appID,
		"borrower":      input.Application.Borrower.Name,
		"loanProgram":   input.Application.Loan.Program,
		"loanAmount":    input.Application.Loan.LoanAmount,
		"status":        status,
		"createdAt":     createdAt,
	}
	if input.Decision != nil {
		document["decision"] = input.Decision.Decision
		document["totalScore"] = input.Decision.TotalScore
		document["riskGrade"] = input.Decision.RiskGrade
	}

	if err := h.audit.Index(ctx, appID, document); err != nil {
		h.logger.Warn("audit index failed", map[string]interface{}{
			"error":         err,
			"applicationId": appID,
		})
		return false
	}
	return true
}

// statusForDecision maps the terminal decision onto the stored status.
func statusForDecision(decision models.DecisionType) string {
	switch decision {
	case models.DecisionApprove:
		return "approved"
	case models.DecisionConditional:
		return "conditionally_approved"
	case models.DecisionDeny:
		return "denied"
	default:
		return "pending"
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// ElasticsearchAuditIndexer indexes audit documents into the decision
// audit index.
type ElasticsearchAuditIndexer struct {
	client *elasticsearch.Client
}

func NewElasticsearchAuditIndexer(client *elasticsearch.Client) *ElasticsearchAuditIndexer {
	return &ElasticsearchAuditIndexer{client: client}
}

func (i *ElasticsearchAuditIndexer) Index(ctx context.Context, documentID string, document interface{}) error {
	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal audit document: %w", err)
	}

	res, err := i.client.Index(
		auditIndexName,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(documentID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index audit document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index audit document: %s", res.Status())
	}
	return nil
}
