package widget

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/frahmantamala/chathub/internal"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaName = "widget-settings.json"

// Schema validates raw settings documents before they are decoded.
type Schema struct {
	compiled *jsonschema.Schema
}

func NewSchema() (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("widget: load schema: %w", err)
	}
	compiled, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("widget: compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustSchema panics when the embedded schema does not compile.
func MustSchema() *Schema {
	s, err := NewSchema()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse checks data against the schema and decodes it. Malformed JSON yields ErrMalformedImport;
// a schema violation yields ErrInvalidImport with one detail per failing field.
func (s *Schema) Parse(data []byte) (Settings, error) {
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Settings{}, ErrMalformedImport.WithCause(err)
	}
	if dec.More() {
		return Settings{}, ErrMalformedImport.WithCause(errors.New("trailing data after JSON document"))
	}
	if err := s.compiled.Validate(doc); err != nil {
		return Settings{}, ErrInvalidImport.WithDetails(violations(err)).WithCause(err)
	}

	var out Settings
	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, ErrMalformedImport.WithCause(err)
	}
	return out, nil
}

// Check validates an already decoded Settings value.
func (s *Schema) Check(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return internal.NewInternalError("failed to encode widget settings", err)
	}
	if _, err := s.Parse(data); err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) && appErr.Details != nil {
			return ErrInvalidSettings.WithDetails(appErr.Details)
		}
		return ErrInvalidSettings.WithCause(err)
	}
	return nil
}

func violations(err error) internal.ValidationErrors {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return internal.ValidationErrors{Errors: []internal.ValidationError{
			{Field: "settings", Message: err.Error(), Code: string(internal.ErrCodeInvalidValue)},
		}}
	}

	seen := map[string]bool{}
	var out []internal.ValidationError
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		field := strings.TrimPrefix(e.InstanceLocation, "/")
		if field == "" {
			field = "settings"
		}
		key := field + "|" + e.Message
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, internal.ValidationError{
			Field:   field,
			Message: e.Message,
			Code:    string(internal.ErrCodeInvalidValue),
		})
	}
	walk(ve)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return internal.ValidationErrors{Errors: out}
}
