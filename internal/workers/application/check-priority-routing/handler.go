// internal/workers/application/check-priority-routing/handler.go
package checkpriorityrouting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"
)

const (
	TaskType = "check-priority-routing"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PRIORITY_ROUTING_FAILED", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "PRIORITY_ROUTING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tier := TierStandard
	if input.BorrowerID != "" {
		fetched, err := h.getBorrowerTier(ctx, input.BorrowerID)
		if err != nil {
			h.logger.Warn("failed to fetch borrower tier, defaulting to standard", map[string]interface{}{
				"borrowerId": input.BorrowerID,
				"error":      err,
			})
		} else {
			tier = fetched
		}
	}

	queue := h.determineQueue(input.LoanAmount, input.Program)
	priority := h.determinePriority(tier, queue)
	isPriority := tier == TierPrivateClient

	h.logger.Info("priority routing determined", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"tier":          tier,
		"queue":         queue,
		"priority":      priority,
	})

	return &Output{
		IsPriorityClient:  isPriority,
		RoutingPriority:   priority,
		UnderwritingQueue: queue,
	}, nil
}

func (h *Handler) getBorrowerTier(ctx context.Context, borrowerID string) (string, error) {
	cacheKey := "borrower:tier:" + borrowerID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		return val, nil
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT relationship_tier
		FROM borrowers
		WHERE id = $1`, borrowerID)

	var tier string
	err := row.Scan(&tier)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("borrower not found: %s", borrowerID)
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	switch tier {
	case TierPrivateClient, TierPreferred, TierStandard:
		// valid
	default:
		tier = TierStandard
	}

	h.redis.Set(ctx, cacheKey, tier, h.config.CacheTTL)
	return tier, nil
}

func (h *Handler) determineQueue(loanAmount float64, program models.LoanProgram) string {
	switch {
	case program == models.LoanProgramNonQM:
		return QueueManualReview
	case program == models.LoanProgramJumbo || loanAmount >= h.config.JumboThreshold:
		return QueueSeniorUnderwriting
	default:
		return QueueStandardUnderwriting
	}
}

func (h *Handler) determinePriority(tier, queue string) string {
	switch {
	case tier == TierPrivateClient:
		return PriorityHigh
	case queue == QueueSeniorUnderwriting:
		return PriorityHigh
	case tier == TierPreferred, queue == QueueManualReview:
		return PriorityMedium
	default:
		return PriorityLow
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
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
