// Orbitus - ISS Position Tracking and Orbit History
// Copyright 2026 Orbitus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/orbitus/orbitus

package validation

import (
	"strings"
	"testing"
)

type coordinates struct {
	Latitude  float64  `validate:"min=-90,max=90"`
	Longitude float64  `validate:"min=-180,max=180"`
	Altitude  *float64 `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	altitude := 417.5

	t.Run("valid struct passes", func(t *testing.T) {
		c := coordinates{Latitude: 45, Longitude: -120, Altitude: &altitude}
		if err := ValidateStruct(&c); err != nil {
			t.Errorf("ValidateStruct = %v, want nil", err)
		}
	})

	t.Run("out of range field fails", func(t *testing.T) {
		c := coordinates{Latitude: 91, Longitude: 0, Altitude: &altitude}
		err := ValidateStruct(&c)
		if err == nil {
			t.Fatal("ValidateStruct passed, want failure")
		}
		fields := err.Fields()
		if len(fields) != 1 {
			t.Fatalf("got %d field errors, want 1", len(fields))
		}
		if fields[0].Field != "Latitude" || fields[0].Tag != "max" {
			t.Errorf("field error = %+v, want Latitude/max", fields[0])
		}
	})

	t.Run("missing required pointer fails", func(t *testing.T) {
		c := coordinates{Latitude: 0, Longitude: 0, Altitude: nil}
		err := ValidateStruct(&c)
		if err == nil {
			t.Fatal("ValidateStruct passed, want failure")
		}
		if !strings.Contains(err.Error(), "Altitude") {
			t.Errorf("error %q does not name the missing field", err.Error())
		}
	})

	t.Run("multiple failures are collected", func(t *testing.T) {
		c := coordinates{Latitude: -91, Longitude: 181, Altitude: nil}
		err := ValidateStruct(&c)
		if err == nil {
			t.Fatal("ValidateStruct passed, want failure")
		}
		if len(err.Fields()) != 3 {
			t.Errorf("got %d field errors, want 3", len(err.Fields()))
		}
	})
}

func TestToAPIError(t *testing.T) {
	c := coordinates{Latitude: 91, Longitude: 0}
	err := ValidateStruct(&c)
	if err == nil {
		t.Fatal("ValidateStruct passed, want failure")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message == "" {
		t.Error("Message is empty")
	}
	if apiErr.Details["field"] != "Latitude" {
		t.Errorf("Details[field] = %v, want Latitude", apiErr.Details["field"])
	}
	if apiErr.Details["constraint"] != "max=90" {
		t.Errorf("Details[constraint] = %v, want max=90", apiErr.Details["constraint"])
	}
}
