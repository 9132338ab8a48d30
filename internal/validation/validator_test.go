// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type queryRequest struct {
	Title string `query:"title" validate:"required,notblank,max=20"`
	Limit int    `query:"limit" validate:"gte=0,lte=100"`
}

type nestedConfig struct {
	Recommend struct {
		MinScore float64 `koanf:"min_score" validate:"gte=0,lt=1"`
		Driver   string  `koanf:"driver" validate:"oneof=csv duckdb"`
	} `koanf:"recommend"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{
			name:  "valid request",
			input: &queryRequest{Title: "Thor", Limit: 10},
		},
		{
			name:  "zero limit is allowed",
			input: &queryRequest{Title: "Thor"},
		},
		{
			name:      "missing title",
			input:     &queryRequest{},
			wantField: "title",
			wantTag:   "required",
			wantMsg:   "title is required",
		},
		{
			name:      "blank title",
			input:     &queryRequest{Title: "   \t"},
			wantField: "title",
			wantTag:   "notblank",
			wantMsg:   "title must not be blank",
		},
		{
			name:      "title too long",
			input:     &queryRequest{Title: strings.Repeat("x", 21)},
			wantField: "title",
			wantTag:   "max",
			wantMsg:   "title must be at most 20 characters",
		},
		{
			name:      "negative limit",
			input:     &queryRequest{Title: "Thor", Limit: -1},
			wantField: "limit",
			wantTag:   "gte",
			wantMsg:   "limit must be greater than or equal to 0",
		},
		{
			name: "nested koanf field",
			input: func() *nestedConfig {
				c := &nestedConfig{}
				c.Recommend.MinScore = 1
				c.Recommend.Driver = "csv"
				return c
			}(),
			wantField: "recommend.min_score",
			wantTag:   "lt",
			wantMsg:   "recommend.min_score must be less than 1",
		},
		{
			name: "oneof",
			input: func() *nestedConfig {
				c := &nestedConfig{}
				c.Recommend.Driver = "sqlite"
				return c
			}(),
			wantField: "recommend.driver",
			wantTag:   "oneof",
			wantMsg:   "recommend.driver must be one of: csv duckdb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantTag == "" {
				if err != nil {
					t.Fatalf("ValidateStruct() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.wantField)
			}
			if errs[0].Tag != tt.wantTag {
				t.Errorf("Tag = %q, want %q", errs[0].Tag, tt.wantTag)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&queryRequest{Limit: 5})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidationFailed {
		t.Errorf("Code = %s, want %s", apiErr.Code, CodeValidationFailed)
	}
	if apiErr.Message != "title is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "title" {
		t.Errorf("Details[field] = %v", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&queryRequest{Limit: 500})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != CodeValidationFailed {
		t.Errorf("Code = %s, want %s", apiErr.Code, CodeValidationFailed)
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %#v, want two entries", apiErr.Details["fields"])
	}
	for _, want := range []string{"title: title is required", "limit: limit must be less than or equal to 100"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q missing %q", apiErr.Message, want)
		}
	}
	if err.Error() == "" {
		t.Error("Error() should not be empty")
	}
}

func TestRequestValidationError_Empty(t *testing.T) {
	ve := &RequestValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q", ve.Error())
	}
	if ve.ToAPIError().Code != CodeValidationFailed {
		t.Error("empty error should still carry the validation code")
	}
}
