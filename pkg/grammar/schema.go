package grammar

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed spec-schema.json
var specSchema []byte

// SpecSchema returns the embedded JSON Schema for specification files.
func SpecSchema() []byte {
	return append([]byte(nil), specSchema...)
}

// FieldError is one schema violation.
type FieldError struct {
	Field       string
	Description string
}

// SchemaError reports that a decoded specification does not match the schema.
type SchemaError struct {
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Description)
	}

	return "specification does not match schema: " + strings.Join(parts, "; ")
}

// ValidateSchema checks a generic decoded value (from JSON or YAML) against
// the specification schema. It returns a *SchemaError on violations.
func ValidateSchema(value any) error {
	schemaLoader := gojsonschema.NewBytesLoader(specSchema)
	inputLoader := gojsonschema.NewGoLoader(value)

	result, err := gojsonschema.Validate(schemaLoader, inputLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{}
	for _, verr := range result.Errors() {
		schemaErr.Errors = append(schemaErr.Errors, FieldError{
			Field:       verr.Field(),
			Description: verr.Description(),
		})
	}

	return schemaErr
}
