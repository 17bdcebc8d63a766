// Package schemas checks model replies and session records against the embedded JSON Schemas.
package schemas

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	embedded "github.com/jonathan/interview-coach/schemas"
)

// ValidationError lists every violation of one document.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

// FieldError is one violation at a dotted field path.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return fmt.Sprintf("document does not match %s: %s", ve.Schema, strings.Join(parts, "; "))
}

// SchemaLoadError means an embedded schema is missing or does not compile.
type SchemaLoadError struct {
	Path  string
	Cause error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Path, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error { return e.Cause }

// compileAll compiles every embedded schema once. A schema that fails to compile is
// reported when it is first used rather than blocking the others.
var compileAll = sync.OnceValue(func() map[string]any {
	out := make(map[string]any)
	names, err := fs.Glob(embedded.FS, "*.schema.json")
	if err != nil {
		return out
	}
	for _, name := range names {
		data, err := embedded.FS.ReadFile(name)
		if err != nil {
			out[name] = &SchemaLoadError{Path: name, Cause: err}
			continue
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			out[name] = &SchemaLoadError{Path: name, Cause: err}
			continue
		}
		out[name] = s
	}
	return out
})

func schema(name string) (*gojsonschema.Schema, error) {
	switch v := compileAll()[name].(type) {
	case *gojsonschema.Schema:
		return v, nil
	case error:
		return nil, v
	default:
		return nil, &SchemaLoadError{Path: name, Cause: fs.ErrNotExist}
	}
}

// Validate checks a JSON document against the named embedded schema. A document that is
// not JSON is reported as a violation at the root.
func Validate(name string, doc []byte) error {
	s, err := schema(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &ValidationError{Schema: name, Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return fromResult(name, result)
}

// ValidateValue checks the JSON encoding of v against the named embedded schema.
func ValidateValue(name string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %T for %s: %w", v, name, err)
	}
	return Validate(name, doc)
}

func fromResult(name string, result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{Schema: name}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
