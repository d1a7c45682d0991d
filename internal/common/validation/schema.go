// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"sizing-workers/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

// ValidationError lists every schema violation found in a job's variables.
type ValidationError struct {
	TaskType string
	Problems []FieldError
}

// FieldError is one violation, keyed by the JSON path of the offending field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Field + ": " + p.Message
	}
	return fmt.Sprintf("%s input invalid: %s", e.TaskType, strings.Join(msgs, "; "))
}

// Validator checks job variables against the input schemas of the activity
// registry. Schemas are compiled once per task type.
type Validator struct {
	registry *registry.ActivityRegistry

	mu       sync.RWMutex
	compiled map[string]*gojsonschema.Schema
}

func NewValidator(reg *registry.ActivityRegistry) *Validator {
	return &Validator{
		registry: reg,
		compiled: make(map[string]*gojsonschema.Schema),
	}
}

// ValidateInput validates raw job variables. Task types without a registered
// input schema pass unchecked.
func (v *Validator) ValidateInput(taskType string, variables string) error {
	if v == nil {
		return nil
	}

	schema, err := v.schemaFor(taskType)
	if err != nil {
		return err
	}
	if schema == nil {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(variables))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.Slice(problems, func(i, j int) bool {
		if problems[i].Field != problems[j].Field {
			return problems[i].Field < problems[j].Field
		}
		return problems[i].Code < problems[j].Code
	})

	return &ValidationError{TaskType: taskType, Problems: problems}
}

func (v *Validator) schemaFor(taskType string) (*gojsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[taskType]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}

	activity, found := v.registry.Find(taskType)
	if !found {
		return nil, nil
	}

	schema, err := activity.CompileInputSchema()
	if err != nil {
		return nil, fmt.Errorf("compile input schema for %s: %w", taskType, err)
	}

	v.mu.Lock()
	v.compiled[taskType] = schema
	v.mu.Unlock()
	return schema, nil
}
