package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON Schema that can be shared between goroutines.
type Schema struct {
	name   string
	source string

	once   sync.Once
	schema *gojsonschema.Schema
	err    error
}

// NewSchema wraps a JSON Schema document. It is compiled on first use.
func NewSchema(name, source string) *Schema {
	return &Schema{name: name, source: source}
}

// MustCompile panics when the schema document itself is invalid.
func (s *Schema) MustCompile() *Schema {
	if err := s.compile(); err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) compile() error {
	s.once.Do(func() {
		s.schema, s.err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(s.source))
		if s.err != nil {
			s.err = fmt.Errorf("compile schema %s: %w", s.name, s.err)
		}
	})
	return s.err
}

// ValidateBytes validates a raw JSON document.
func (s *Schema) ValidateBytes(document []byte) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewBytesLoader(document))
}

// ValidateValue validates an already decoded Go value.
func (s *Schema) ValidateValue(value interface{}) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewGoLoader(value))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	if err := s.compile(); err != nil {
		return nil, err
	}

	result, err := s.schema.Validate(loader)
	if err != nil {
		// the document could not be parsed as JSON at all
		return nil, err
	}

	vr := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		vr.Errors = append(vr.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return vr, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return messages
}

// Error joins every field error into one line.
func (vr *ValidationResult) Error() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, e := range vr.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}
