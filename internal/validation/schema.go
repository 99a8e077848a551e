package validation

import (
	"encoding/json"
	"fmt"
	"os"

	"staffhub-report/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// LoadSchema loads a JSON schema from a file
func LoadSchema(schemaPath string) (*gojsonschema.Schema, error) {
	schemaLoader := gojsonschema.NewReferenceLoader("file://" + schemaPath)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return schema, nil
}

// ValidateTemplateJSON validates raw template JSON against a schema
func ValidateTemplateJSON(templateJSON []byte, schema *gojsonschema.Schema) error {
	documentLoader := gojsonschema.NewBytesLoader(templateJSON)
	result, err := schema.Validate(documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// ValidateAndParseTemplate validates template JSON against the schema at
// schemaPath, then unmarshals it and runs the model-level semantic checks
// that a JSON schema cannot express (field name uniqueness, operator arity).
func ValidateAndParseTemplate(templateJSON []byte, schemaPath string) (*models.ReportTemplate, error) {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaData)
	schema, err := gojsonschema.NewSchema(schemaLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := ValidateTemplateJSON(templateJSON, schema); err != nil {
		return nil, err
	}

	var template models.ReportTemplate
	if err := json.Unmarshal(templateJSON, &template); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if errs := template.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %v", errs)
	}

	return &template, nil
}
