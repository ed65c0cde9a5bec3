package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// TextCodeSchemaInvalid tags content documents that fail their schema.
const TextCodeSchemaInvalid = "CONTENT_SCHEMA_INVALID"

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Schema string
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issueLocation(issue)
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Schema is a compiled JSON Schema bound to a document name.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Compile parses raw as a draft 2020-12 schema.
func Compile(name string, raw []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	resource := name + ".schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSchemaInvalid, name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// MustCompile panics when raw is not a valid schema. Intended for embedded schemas.
func MustCompile(name string, raw []byte) *Schema {
	schema, err := Compile(name, raw)
	if err != nil {
		panic(err)
	}
	return schema
}

// Name returns the document name the schema validates.
func (s *Schema) Name() string { return s.name }

// ValidateJSON decodes raw and validates it.
func (s *Schema) ValidateJSON(raw []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return &PayloadValidationError{
			Schema: s.name,
			Issues: []ValidationIssue{{Message: "malformed json: " + err.Error()}},
			Cause:  err,
		}
	}
	return s.Validate(document)
}

// Validate checks an already decoded document.
func (s *Schema) Validate(document any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(document); err != nil {
		return &PayloadValidationError{
			Schema: s.name,
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// AsContentError converts a schema failure into a go-errors validation error
// carrying one field error per issue.
func AsContentError(err error) error {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if !errors.As(err, &payloadErr) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "content document invalid").
			WithTextCode(TextCodeSchemaInvalid)
	}
	fields := make([]goerrors.FieldError, 0, len(payloadErr.Issues))
	for _, issue := range payloadErr.Issues {
		fields = append(fields, goerrors.FieldError{
			Field:   issueLocation(issue),
			Message: issue.Message,
		})
	}
	return goerrors.NewValidation(fmt.Sprintf("%s document invalid", payloadErr.Schema), fields...).
		WithTextCode(TextCodeSchemaInvalid).
		WithMetadata(map[string]any{"document": payloadErr.Schema})
}

func issueLocation(issue ValidationIssue) string {
	location := strings.TrimSpace(issue.Location)
	if location == "" {
		return "#"
	}
	if !strings.HasPrefix(location, "#") {
		return "#" + location
	}
	return location
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
