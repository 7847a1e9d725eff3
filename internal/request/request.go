// Package request decodes and validates untyped JSON payloads into typed request shapes.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Validatable is a payload that knows its own rules.
type Validatable interface {
	Validate() error
}

// FieldError is one (field-path, reason) pair surfaced to the caller.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError lists every problem found in a payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Invalid builds a single-field ValidationError.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// Decode unmarshals raw into v and runs its rules. Unknown fields are ignored.
// Any failure is returned as *ValidationError.
func Decode(raw []byte, v Validatable) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Invalid("body", "is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			field := te.Field
			if field == "" {
				field = "body"
			}
			return Invalid(field, fmt.Sprintf("must be a %s", jsonKind(te.Type.Kind().String())))
		}
		return Invalid("body", "malformed JSON")
	}
	return FromValidation(v.Validate())
}

// FromValidation converts ozzo-validation output into *ValidationError with
// dotted field paths. Nil stays nil.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		var ie validation.InternalError
		if errors.As(err, &ie) {
			return err
		}
		return Invalid("body", err.Error())
	}
	out := &ValidationError{}
	flatten("", verrs, out)
	sort.Slice(out.Fields, func(i, j int) bool { return out.Fields[i].Field < out.Fields[j].Field })
	return out
}

func flatten(prefix string, verrs validation.Errors, out *ValidationError) {
	for k, e := range verrs {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		var nested validation.Errors
		if errors.As(e, &nested) {
			flatten(path, nested, out)
			continue
		}
		out.Fields = append(out.Fields, FieldError{Field: path, Reason: e.Error()})
	}
}

func jsonKind(goKind string) string {
	switch goKind {
	case "string":
		return "string"
	case "struct", "map":
		return "object"
	case "slice", "array":
		return "array"
	case "bool":
		return "boolean"
	default:
		return "number"
	}
}
