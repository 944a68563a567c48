// internal/workers/application/validate-application-data/handler.go
package validateapplicationdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-application-data"
)

// Credit score bounds shared by FICO and VantageScore.
const (
	minCreditScore = 300
	maxCreditScore = 850
)

var (
	ErrApplicationValidationFailed = errors.New("APPLICATION_VALIDATION_FAILED")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "APPLICATION_VALIDATION_FAILED", err.Error())
		return
	}

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
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	app := &input.Application

	var validationErrors []ValidationError
	var warnings []ValidationError

	applicationJSON, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot serialize application: %v",
			ErrApplicationValidationFailed, err)
	}
	shapeErrors, err := validateShape(applicationJSON)
	if err != nil {
		return nil, fmt.Errorf("%w: schema check failed: %v",
			ErrApplicationValidationFailed, err)
	}
	validationErrors = append(validationErrors, shapeErrors...)

	validationErrors = append(validationErrors, h.validateBorrower(&app.Borrower)...)
	validationErrors = append(validationErrors, h.validateCreditScores(app.CreditScores)...)

	incomeErrors, incomeWarnings := h.validateIncomeSources(app.IncomeSources)
	validationErrors = append(validationErrors, incomeErrors...)
	warnings = append(warnings, incomeWarnings...)

	validationErrors = append(validationErrors, h.validateLoan(&app.Loan)...)
	validationErrors = append(validationErrors, h.validateProperty(&app.Property)...)

	isValid := len(validationErrors) == 0
	h.logger.Info("validation completed", map[string]interface{}{
		"applicationId": app.ApplicationID,
		"isValid":       isValid,
		"errorCount":    len(validationErrors),
		"warningCount":  len(warnings),
	})

	// Warnings never fail the job; they only reduce downstream
	// confidence.
	for _, warning := range warnings {
		h.logger.Warn("partial data", map[string]interface{}{
			"field":   warning.Field,
			"message": warning.Message,
		})
	}

	if !isValid {
		return nil, fmt.Errorf("%w: %d validation errors, first: %s (%s)",
			ErrApplicationValidationFailed, len(validationErrors),
			validationErrors[0].Field, validationErrors[0].Message)
	}

	return &Output{
		IsValid:          true,
		ValidationErrors: []ValidationError{},
		Warnings:         warnings,
	}, nil
}

func (h *Handler) validateBorrower(borrower *models.BorrowerInfo) []ValidationError {
	errs := []ValidationError{}

	name := strings.TrimSpace(borrower.Name)
	name = whitespaceRegex.ReplaceAllString(name, " ")
	if name == "" {
		errs = append(errs, ValidationError{
			Field:   "borrower.name",
			Code:    "MISSING_REQUIRED",
			Message: "Borrower name is required",
		})
	} else if !nameRegex.MatchString(name) {
		errs = append(errs, ValidationError{
			Field:   "borrower.name",
			Code:    "INVALID_FORMAT",
			Message: "Name must be 2-100 characters, letters, spaces, hyphens, or apostrophes",
		})
	}

	if borrower.Email != "" && !emailRegex.MatchString(strings.TrimSpace(borrower.Email)) {
		errs = append(errs, ValidationError{
			Field:   "borrower.email",
			Code:    "INVALID_FORMAT",
			Message: "Invalid email format",
		})
	}

	if borrower.PhoneNumber != "" {
		phone := phoneStripRegex.ReplaceAllString(borrower.PhoneNumber, "")
		if phone == "" || !phoneRegex.MatchString(phone) {
			errs = append(errs, ValidationError{
				Field:   "borrower.phoneNumber",
				Code:    "INVALID_FORMAT",
				Message: "Invalid phone format (E.164 recommended)",
			})
		}
	}

	if borrower.SSN != "" && !ssnRegex.MatchString(strings.TrimSpace(borrower.SSN)) {
		errs = append(errs, ValidationError{
			Field:   "borrower.ssn",
			Code:    "INVALID_FORMAT",
			Message: "SSN must be nine digits",
		})
	}

	if borrower.AnnualIncome < 0 {
		errs = append(errs, ValidationError{
			Field:   "borrower.annualIncome",
			Code:    "INVALID_VALUE",
			Message: "Annual income must not be negative",
		})
	}

	return errs
}

func (h *Handler) validateCreditScores(scores []models.CreditScoreEntry) []ValidationError {
	errs := []ValidationError{}

	for i, score := range scores {
		if score.ScoreValue < minCreditScore || score.ScoreValue > maxCreditScore {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("creditScores[%d].scoreValue", i),
				Code:    "OUT_OF_RANGE",
				Message: fmt.Sprintf("Credit score %d outside [%d, %d]", score.ScoreValue, minCreditScore, maxCreditScore),
			})
		}
		if strings.TrimSpace(score.Bureau) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("creditScores[%d].bureau", i),
				Code:    "MISSING_REQUIRED",
				Message: "Credit score bureau is required",
			})
		}
	}

	return errs
}

func (h *Handler) validateIncomeSources(sources []models.IncomeSourceEntry) ([]ValidationError, []ValidationError) {
	errs := []ValidationError{}
	warnings := []ValidationError{}

	for i, source := range sources {
		if source.Amount <= 0 && source.MonthlyAmount <= 0 && source.AnnualAmount <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("incomeSources[%d].amount", i),
				Code:    "INVALID_VALUE",
				Message: "Income amount must be positive",
			})
		}
		if source.SourceType == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("incomeSources[%d].sourceType", i),
				Code:    "MISSING_REQUIRED",
				Message: "Income source type is required",
			})
		}
		if source.Employer == "" {
			warnings = append(warnings, ValidationError{
				Field:   fmt.Sprintf("incomeSources[%d].employer", i),
				Code:    "PARTIAL_DATA",
				Message: "Employer not provided; income scored conservatively",
			})
		}
	}

	return errs, warnings
}

func (h *Handler) validateLoan(loan *models.LoanRequest) []ValidationError {
	errs := []ValidationError{}

	if loan.LoanAmount <= 0 {
		errs = append(errs, ValidationError{
			Field:   "loan.loanAmount",
			Code:    "INVALID_VALUE",
			Message: "Loan amount must be positive",
		})
	}
	if loan.Program != "" && !loan.Program.Valid() {
		errs = append(errs, ValidationError{
			Field:   "loan.program",
			Code:    "INVALID_VALUE",
			Message: fmt.Sprintf("Unknown loan program %q", loan.Program),
		})
	}
	if loan.DownPayment < 0 {
		errs = append(errs, ValidationError{
			Field:   "loan.downPayment",
			Code:    "INVALID_VALUE",
			Message: "Down payment must not be negative",
		})
	}

	return errs
}

func (h *Handler) validateProperty(property *models.PropertyRecord) []ValidationError {
	errs := []ValidationError{}

	if property.AppraisedValue <= 0 {
		errs = append(errs, ValidationError{
			Field:   "property.appraisedValue",
			Code:    "INVALID_VALUE",
			Message: "Appraised value must be positive",
		})
	}

	return errs
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
