// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type syncSettings struct {
	StartDate string  `validate:"required,isodate"`
	Workers   int     `validate:"min=1,max=50"`
	Percent   float64 `validate:"gt=0,lte=100"`
	Format    string  `validate:"omitempty,oneof=json console"`
}

type wrapper struct {
	Sync syncSettings
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input syncSettings
	}{
		{"plain date", syncSettings{StartDate: "2021-01-01", Workers: 10, Percent: 80}},
		{"rfc3339", syncSettings{StartDate: "2021-01-01T00:00:00Z", Workers: 1, Percent: 100, Format: "console"}},
		{"upper bounds", syncSettings{StartDate: "2021-01-01", Workers: 50, Percent: 0.5, Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	valid := syncSettings{StartDate: "2021-01-01", Workers: 10, Percent: 80}

	tests := []struct {
		name      string
		mutate    func(s *syncSettings)
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"missing start date", func(s *syncSettings) { s.StartDate = "" }, "Sync.StartDate", "required", "Sync.StartDate is required"},
		{"bad start date", func(s *syncSettings) { s.StartDate = "01/02/2021" }, "Sync.StartDate", "isodate", "RFC 3339"},
		{"too many workers", func(s *syncSettings) { s.Workers = 51 }, "Sync.Workers", "max", "Sync.Workers must be at most 50"},
		{"zero percent", func(s *syncSettings) { s.Percent = 0 }, "Sync.Percent", "gt", "Sync.Percent must be greater than 0"},
		{"percent over 100", func(s *syncSettings) { s.Percent = 101 }, "Sync.Percent", "lte", "less than or equal to 100"},
		{"unknown format", func(s *syncSettings) { s.Format = "xml" }, "Sync.Format", "oneof", "must be one of: json console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := wrapper{Sync: valid}
			tt.mutate(&in.Sync)

			err := ValidateStruct(&in)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			var verr *Errors
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *Errors, got %T", err)
			}
			fields := verr.Fields()
			if len(fields) != 1 {
				t.Fatalf("Expected 1 field error, got %d: %v", len(fields), err)
			}
			if fields[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", fields[0].Field(), tt.wantField)
			}
			if fields[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", fields[0].Tag(), tt.wantTag)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&syncSettings{})
	if err == nil {
		t.Fatal("ValidateStruct() expected error, got nil")
	}

	var verr *Errors
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *Errors, got %T", err)
	}
	if len(verr.Fields()) != 3 {
		t.Errorf("Expected 3 field errors, got %d: %v", len(verr.Fields()), err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("Error() = %q, want messages joined with '; '", err.Error())
	}
}
