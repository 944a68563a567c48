// pkg/registry/validate.go
package registry

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// CompileSchemas checks that the activity's input and output schemas are
// themselves valid JSON Schema documents.
func (a *Activity) CompileSchemas() error {
	if len(a.InputSchema) > 0 {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.InputSchema)); err != nil {
			return fmt.Errorf("activity %s: invalid input schema: %w", a.ID, err)
		}
	}
	if len(a.OutputSchema) > 0 {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(a.OutputSchema)); err != nil {
			return fmt.Errorf("activity %s: invalid output schema: %w", a.ID, err)
		}
	}
	return nil
}

// ValidateInput validates a job variable payload against the activity's
// input schema. A missing schema accepts any payload.
func (a *Activity) ValidateInput(payload interface{}) error {
	if len(a.InputSchema) == 0 {
		return nil
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(a.InputSchema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("activity %s: schema validation error: %w", a.ID, err)
	}
	if !result.Valid() {
		return fmt.Errorf("activity %s: input does not match schema: %v", a.ID, result.Errors())
	}
	return nil
}

// FindByTaskType returns the activity registered for a Zeebe task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}
