// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input validation: malformed or out-of-range application data. Never
	// retried, never coerced.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Partial data: an optional field is missing. Scorers log it and score
	// conservatively; it is never a hard failure on its own.
	ErrCodePartialData ErrorCode = "PARTIAL_DATA"

	// Aggregation: a required category result is missing when the decision
	// engine runs. Fatal for the decision, reported as unable-to-decision.
	ErrCodeAggregationFailed ErrorCode = "AGGREGATION_FAILED"

	ErrCodeUnknownLoanProgram ErrorCode = "UNKNOWN_LOAN_PROGRAM"

	ErrCodeScreeningUnavailable ErrorCode = "SCREENING_UNAVAILABLE"
	ErrCodeScreeningFailed      ErrorCode = "SCREENING_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateApplication     ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeAuditIndexFailed         ErrorCode = "AUDIT_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeProviderTimeout ErrorCode = "PROVIDER_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewValidationError creates a non-retryable input validation error naming
// the field that triggered it.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("Validation failed for field '%s'", field),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewPartialDataWarning creates a warning-grade error for a missing
// optional field.
func NewPartialDataWarning(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePartialData,
		Message:   fmt.Sprintf("Optional field '%s' missing", field),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewAggregationFailure creates a fatal error for a missing category
// result. The decision must be reported as unable-to-decision, never
// defaulted.
func NewAggregationFailure(missingCategories []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAggregationFailed,
		Message:   "Unable to decision: required category results missing",
		Details:   fmt.Sprintf("missing: %s", strings.Join(missingCategories, ", ")),
		Retryable: false,
		Metadata:  map[string]interface{}{"missingCategories": missingCategories},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownLoanProgramError creates a non-retryable program lookup error.
func NewUnknownLoanProgramError(program string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownLoanProgram,
		Message:   "Unknown loan program",
		Details:   fmt.Sprintf("program: %s", program),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScreeningFailedError creates a retryable screening provider error.
func NewScreeningFailedError(list string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScreeningFailed,
		Message:   "Sanctions screening failed",
		Details:   fmt.Sprintf("list: %s, error: %s", list, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable duplicate application error.
func NewDuplicateApplicationError(applicationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "Application already exists",
		Details:   fmt.Sprintf("applicationId: %s", applicationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditIndexFailedError creates a retryable audit indexing error.
func NewAuditIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditIndexFailed,
		Message:   "Decision audit indexing failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(provider, detail string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   fmt.Sprintf("Provider '%s' timeout", provider),
		Details:   detail,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeValidationFailed:         "VALIDATION_FAILED",
	ErrCodePartialData:              "PARTIAL_DATA",
	ErrCodeAggregationFailed:        "AGGREGATION_FAILED",
	ErrCodeUnknownLoanProgram:       "UNKNOWN_LOAN_PROGRAM",
	ErrCodeScreeningUnavailable:     "SCREENING_UNAVAILABLE",
	ErrCodeScreeningFailed:          "SCREENING_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:     "DATABASE_INSERT_FAILED",
	ErrCodeDuplicateApplication:     "DUPLICATE_APPLICATION",
	ErrCodeAuditIndexFailed:         "AUDIT_INDEX_FAILED",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeProviderTimeout:          "PROVIDER_TIMEOUT",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeAuditIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeScreeningFailed:
		return 3 // Retryable technical errors

	case ErrCodeProviderTimeout:
		return 2

	default:
		return 0 // Business and validation errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// IsValidationError reports whether err is a field-level validation
// failure.
func IsValidationError(err error) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == ErrCodeValidationFailed
}

// IsAggregationFailure reports whether err means the decision could not be
// computed.
func IsAggregationFailure(err error) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == ErrCodeAggregationFailed
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARTIAL"):
		return "VALIDATION"
	case strings.Contains(codeStr, "AGGREGATION") || strings.Contains(codeStr, "PROGRAM"):
		return "DECISION"
	case strings.Contains(codeStr, "SCREENING"):
		return "SCREENING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "DUPLICATE"):
		return "DATABASE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "PROVIDER") || strings.Contains(codeStr, "TIMEOUT"):
		return "PROVIDER"
	default:
		return "OTHER"
	}
}
