// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

// Package validation provides struct validation using go-playground/validator
// v10. A thread-safe singleton validator instance (struct metadata is cached
// per type) validates decoded upstream position records and HTTP request
// parameter structs.
//
//	type historyRequest struct {
//	    Page     int `validate:"min=0"`
//	    PageSize int `validate:"min=0"`
//	}
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    ...
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError is a single field validation failure.
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value interface{}
}

// Error returns a human-readable message for the failure.
func (e *FieldError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field %s failed %s=%s validation", e.Field, e.Tag, e.Param)
	}
	return fmt.Sprintf("field %s failed %s validation", e.Field, e.Tag)
}

// StructError is a collection of field validation failures for one struct.
type StructError struct {
	fields []FieldError
}

// Fields returns the individual field failures.
func (e *StructError) Fields() []FieldError {
	return e.fields
}

// Error implements the error interface.
func (e *StructError) Error() string {
	if len(e.fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.fields))
	for i := range e.fields {
		msgs = append(msgs, e.fields[i].Error())
	}
	return strings.Join(msgs, "; ")
}

// APIError mirrors models.APIError to avoid an import cycle.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

// ToAPIError converts the validation failures to the API error format.
func (e *StructError) ToAPIError() *APIError {
	apiErr := &APIError{
		Code:    "VALIDATION_ERROR",
		Message: e.Error(),
	}
	if len(e.fields) > 0 {
		first := e.fields[0]
		apiErr.Details = map[string]interface{}{
			"field":      first.Field,
			"constraint": first.Tag,
		}
		if first.Param != "" {
			apiErr.Details["constraint"] = first.Tag + "=" + first.Param
		}
	}
	return apiErr
}

// ValidateStruct validates v against its `validate` struct tags.
// Returns nil when validation passes.
func ValidateStruct(v interface{}) *StructError {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: v was not a struct. Treat as a single
		// synthetic failure rather than panicking.
		return &StructError{fields: []FieldError{{Field: "_", Tag: "struct"}}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return &StructError{fields: fields}
}
