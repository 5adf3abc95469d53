// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"nomad-workers/internal/common/errors"
)

// ValidateInput checks a worker's raw variable payload against a JSON
// schema before it is unmarshalled into a typed input struct. Schema
// violations come back as a single non-retryable INVALID_INPUT error
// listing every failed field, so workflow operators see the whole
// problem at once instead of one field per retry.
func ValidateInput(payload []byte, schema string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(payload),
	)
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("payload is not valid JSON: %s", err))
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return errors.NewInvalidInputError(strings.Join(violations, "; "))
}

// CompiledSchema is a parsed schema ready for repeated validation.
type CompiledSchema struct {
	schema *gojsonschema.Schema
}

// MustCompileSchema parses a schema at startup so malformed schemas
// fail fast instead of on the first job.
func MustCompileSchema(schema string) *CompiledSchema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %s", err))
	}
	return &CompiledSchema{schema: compiled}
}

// Validate runs the precompiled schema against a payload.
func (c *CompiledSchema) Validate(payload []byte) error {
	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("payload is not valid JSON: %s", err))
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return errors.NewInvalidInputError(strings.Join(violations, "; "))
}
