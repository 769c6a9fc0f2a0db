package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/stagekit/errors"
)

type sampleConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Capacity int    `yaml:"capacity" validate:"min=1,max=1024"`
	Format   string `yaml:"format" validate:"oneof=json console"`
	Timeout  int
}

func TestValidate_Valid(t *testing.T) {
	cfg := sampleConfig{Name: "cam", Capacity: 4, Format: "json"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ReportsYAMLNames(t *testing.T) {
	cfg := sampleConfig{Capacity: 0, Format: "xml"}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	for _, want := range []string{"name: is required", "capacity: must be at least 1", "format: must be one of: json console"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %v", appErr.Details["fields"])
	}
}

func TestValidate_NotAStruct(t *testing.T) {
	if err := Validate(42); err == nil {
		t.Error("expected error for non-struct")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Capacity":       "capacity",
		"ReportInterval": "report_interval",
		"x":              "x",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidator_Collects(t *testing.T) {
	v := New()
	v.Required("name", " ").
		Positive("capacity", 0).
		NonNegativeDuration("report_interval", -time.Second).
		OneOf("format", "xml", "json", "console").
		Check(false, "port", "out of range")

	if !v.HasErrors() {
		t.Fatal("expected errors")
	}
	if len(v.Errors()) != 5 {
		t.Errorf("expected 5 errors, got %d", len(v.Errors()))
	}
	err := v.Validate()
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestValidator_Clean(t *testing.T) {
	v := New().Required("name", "cam").Positive("capacity", 4).OneOf("format", "json", "json")
	if err := v.Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestValidate_RequiredIf(t *testing.T) {
	type exportConfig struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint" validate:"required_if=Enabled true"`
	}
	if err := Validate(exportConfig{}); err != nil {
		t.Errorf("expected disabled config to pass, got %v", err)
	}
	err := Validate(exportConfig{Enabled: true})
	if err == nil || !strings.Contains(err.Error(), "endpoint: is required") {
		t.Errorf("expected endpoint to be required, got %v", err)
	}
}

func TestValidator_AddErrorf(t *testing.T) {
	err := New().AddErrorf("stages", "need at least %d (got: %d)", 2, 1).Validate()
	if err == nil || !strings.Contains(err.Error(), "stages: need at least 2 (got: 1)") {
		t.Errorf("unexpected error %v", err)
	}
}
