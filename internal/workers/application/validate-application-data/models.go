// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	"regexp"

	"mortgage-workers/internal/models"
)

type Input struct {
	Application models.ApplicationRecord `json:"application"`
}

type Output struct {
	IsValid          bool              `json:"isValid"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	Warnings         []ValidationError `json:"validationWarnings"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Predefined patterns
var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	// E.164 format: optional +, must start with 1-9, then 6-14 more digits
	phoneRegex = regexp.MustCompile(`^[\+]?[1-9][\d]{6,14}$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-Z\s\-\'\.]{2,100}$`)
	ssnRegex   = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
	phoneStripRegex = regexp.MustCompile(`[^\d\+]`)
)
