package validation

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin/binding"
)

// Refiner adds cross-field rules checked after the tag rules.
type Refiner interface {
	Refine() []FieldError
}

// Defaulter fills in defaults after decoding and before validation.
type Defaulter interface {
	ApplyDefaults()
}

// Schema describes the shape one request part must have.
type Schema struct {
	name  string
	newFn func() any
}

// For returns the schema for struct type T. Decoded values are *T.
func For[T any]() *Schema {
	var zero T
	return &Schema{
		name:  reflect.TypeOf(zero).Name(),
		newFn: func() any { return new(T) },
	}
}

// Name returns the Go type name behind the schema.
func (s *Schema) Name() string { return s.name }

// DecodeJSON decodes and validates a JSON document. An empty document is
// treated as {} so required fields are reported rather than skipped.
func (s *Schema) DecodeJSON(e *Engine, data []byte) (any, error) {
	target := s.newFn()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, target); err != nil {
			if verrs, ok := jsonViolation(err); ok {
				return nil, verrs
			}
			return nil, err
		}
	}
	return s.finish(e, target)
}

// DecodeValues maps string values (query, path params, headers) onto the
// struct fields carrying tag, coercing to the field types, then validates.
func (s *Schema) DecodeValues(e *Engine, values map[string][]string, tag string) (any, error) {
	target := s.newFn()
	if err := binding.MapFormWithTag(target, values, tag); err != nil {
		return nil, coercionViolation(err, values)
	}
	return s.finish(e, target)
}

func (s *Schema) finish(e *Engine, target any) (any, error) {
	if d, ok := target.(Defaulter); ok {
		d.ApplyDefaults()
	}
	if err := e.Struct(target); err != nil {
		return nil, err
	}
	return target, nil
}

func jsonViolation(err error) (Errors, bool) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr), stderrors.Is(err, io.ErrUnexpectedEOF):
		return Errors{{Path: "body", Reason: "Malformed JSON"}}, true
	case stderrors.As(err, &typeErr):
		path := typeErr.Field
		if path == "" {
			path = "body"
		}
		return Errors{{Path: path, Reason: fmt.Sprintf("Expected %s, received %s", typeErr.Type.Kind(), typeErr.Value)}}, true
	}
	return nil, false
}

func coercionViolation(err error, values map[string][]string) error {
	var numErr *strconv.NumError
	if !stderrors.As(err, &numErr) {
		return err
	}
	path := ""
	for key, vals := range values {
		if slices.Contains(vals, numErr.Num) {
			path = key
			break
		}
	}
	return Errors{{Path: path, Reason: fmt.Sprintf("Expected number, received '%s'", numErr.Num)}}
}
