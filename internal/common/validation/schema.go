// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// rootField is how gojsonschema names the document root.
const rootField = "(root)"

// Validate checks document against a JSON schema expressed as Go values.
// The error return is reserved for an unusable schema.
func Validate(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   contextField(e.Context().String()),
			Message: e.String(),
			Code:    strings.ToUpper(e.Type()),
		})
	}

	return out, nil
}

// contextField strips the root marker from a gojsonschema context path.
func contextField(ctx string) string {
	if ctx == rootField {
		return ""
	}
	return strings.TrimPrefix(ctx, rootField+".")
}

// Path renders a field as "a -> b -> c"; the root yields "".
func Path(field string) string {
	if field == "" || field == rootField {
		return ""
	}
	return strings.Join(strings.Split(field, "."), " -> ")
}
