// internal/workers/application/send-decision-notification/handler.go
package senddecisionnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-decision-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Service interfaces so tests can stub the AWS clients.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(config.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// NewHandlerWithClients builds a handler with explicit service clients.
func NewHandlerWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
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
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ApplicationID == "" {
		return nil, fmt.Errorf("applicationId is required")
	}

	sentAt := time.Now().UTC().Format(time.RFC3339)
	notificationID := uuid.New().String()

	emailSent := false
	emailFailed := false
	if h.config.EmailEnabled && input.Email != "" {
		subject, body := decisionEmail(input)
		if err := h.sendEmail(ctx, input.Email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			emailFailed = true
		} else {
			emailSent = true
		}
	}

	eventPublished := false
	eventFailed := false
	if h.config.EventsEnabled {
		if err := h.publishEvent(ctx, input); err != nil {
			h.logger.Error("decision event publish failed", map[string]interface{}{
				"error":         err,
				"applicationId": input.ApplicationID,
			})
			eventFailed = true
		} else {
			eventPublished = true
		}
	}

	status := StatusDisabled
	switch {
	case (emailSent || eventPublished) && !emailFailed && !eventFailed:
		status = StatusSent
	case emailSent || eventPublished:
		status = StatusPartial
	case emailFailed || eventFailed:
		status = StatusFailed
	}

	h.logger.Info("decision notification processed", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"decision":       input.Decision.Decision,
		"status":         status,
		"emailSent":      emailSent,
		"eventPublished": eventPublished,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		EmailSent:      emailSent,
		EventPublished: eventPublished,
		SentAt:         sentAt,
	}, nil
}

// decisionEmail renders the subject and body for the borrower's decision
// summary.
func decisionEmail(input *Input) (string, string) {
	decision := input.Decision
	name := input.BorrowerName
	if name == "" {
		name = "Applicant"
	}

	var subject string
	var lines []string

	switch decision.Decision {
	case models.DecisionApprove:
		subject = fmt.Sprintf("Your loan application %s has been approved", input.ApplicationID)
		lines = append(lines,
			fmt.Sprintf("Dear %s,", name),
			"",
			fmt.Sprintf("Congratulations! Your mortgage application %s has been approved.", input.ApplicationID),
			fmt.Sprintf("Risk grade: %s (%s pricing).", decision.RiskGrade, decision.PricingTier))
		if decision.LoanTerms != nil {
			lines = append(lines,
				fmt.Sprintf("Indicative rate: %.3f%% (APR %.3f%%), monthly payment $%.2f.",
					decision.LoanTerms.InterestRate*100, decision.LoanTerms.APR*100, decision.LoanTerms.MonthlyPayment))
		}
		if decision.ApprovalExpiresAt != "" {
			lines = append(lines, fmt.Sprintf("This approval is valid until %s.", decision.ApprovalExpiresAt))
		}

	case models.DecisionConditional:
		subject = fmt.Sprintf("Your loan application %s is conditionally approved", input.ApplicationID)
		lines = append(lines,
			fmt.Sprintf("Dear %s,", name),
			"",
			fmt.Sprintf("Your mortgage application %s has been conditionally approved.", input.ApplicationID),
			"Please satisfy the following conditions:")
		for _, condition := range decision.Conditions {
			lines = append(lines, "  - "+condition)
		}

	default:
		subject = fmt.Sprintf("Decision on your loan application %s", input.ApplicationID)
		lines = append(lines,
			fmt.Sprintf("Dear %s,", name),
			"",
			fmt.Sprintf("We are unable to approve your mortgage application %s at this time.", input.ApplicationID))
		if len(decision.DenialReasons) > 0 {
			lines = append(lines, "Reasons:")
			for _, reason := range decision.DenialReasons {
				lines = append(lines, "  - "+reason)
			}
		}
		lines = append(lines, "An adverse action notice with full details will follow by mail.")
	}

	return subject, strings.Join(lines, "\n")
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

// publishEvent emits the decision event for downstream consumers.
func (h *Handler) publishEvent(ctx context.Context, input *Input) error {
	event := map[string]interface{}{
		"eventType":     "loan_decision",
		"applicationId": input.ApplicationID,
		"decision":      input.Decision.Decision,
		"totalScore":    input.Decision.TotalScore,
		"riskGrade":     input.Decision.RiskGrade,
		"pricingTier":   input.Decision.PricingTier,
		"decidedAt":     input.Decision.DecidedAt,
	}
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal decision event: %w", err)
	}

	_, err = h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.EventTopicARN),
		Subject:  aws.String("loan_decision"),
		Message:  aws.String(string(message)),
	})
	return err
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
