// internal/workers/application/validate-application-data/schema.go
package validateapplicationdata

import (
	"github.com/xeipuuv/gojsonschema"
)

// Structural schema applied to the raw application before field-level
// rules run. Field rules produce friendlier messages, so the schema only
// pins types and the top-level required fields. Optional collections
// accept null since omitted slices serialize that way.
const applicationSchema = `{
	"type": "object",
	"required": ["applicationId", "borrower", "loan", "property"],
	"properties": {
		"applicationId": {"type": "string", "minLength": 1},
		"borrower": {
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"email": {"type": "string"},
				"annualIncome": {"type": "number"}
			}
		},
		"creditScores": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"bureau": {"type": "string"},
					"scoreValue": {"type": "integer"}
				}
			}
		},
		"incomeSources": {"type": ["array", "null"]},
		"debts": {"type": ["array", "null"]},
		"documents": {"type": ["array", "null"]},
		"loan": {
			"type": "object",
			"properties": {
				"loanAmount": {"type": "number"},
				"termMonths": {"type": "integer"}
			}
		},
		"property": {
			"type": "object",
			"properties": {
				"appraisedValue": {"type": "number"}
			}
		}
	}
}`

var compiledApplicationSchema = gojsonschema.NewStringLoader(applicationSchema)

// validateShape runs the JSON-schema check over the serialized
// application. Schema violations are reported with the schema's field
// path so they line up with the field-level error format.
func validateShape(applicationJSON []byte) ([]ValidationError, error) {
	result, err := gojsonschema.Validate(
		compiledApplicationSchema, gojsonschema.NewBytesLoader(applicationJSON))
	if err != nil {
		return nil, err
	}

	if result.Valid() {
		return nil, nil
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   resultErr.Field(),
			Code:    "SCHEMA_VIOLATION",
			Message: resultErr.Description(),
		})
	}
	return errs, nil
}
