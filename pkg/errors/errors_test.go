package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeConnectivity, "floating port %q", "din")
	if got := err.Error(); got != `CONNECTIVITY: floating port "din"` {
		t.Errorf("Error() = %q", got)
	}

	cause := stderrors.New("boom")
	wrapped := Wrap(ErrCodeInternal, cause, "generate inverter")
	if !strings.Contains(wrapped.Error(), "boom") {
		t.Errorf("wrapped error should include cause: %q", wrapped.Error())
	}
	if !stderrors.Is(wrapped, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestIsAndGetCode(t *testing.T) {
	err := New(ErrCodeRecursion, "cycle detected")
	if !Is(err, ErrCodeRecursion) {
		t.Error("Is should match the error's code")
	}
	if Is(err, ErrCodeGeometry) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeRecursion) {
		t.Error("Is should not match plain errors")
	}
	if got := GetCode(err); got != ErrCodeRecursion {
		t.Errorf("GetCode = %q", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}

	// Code survives wrapping in plain fmt errors.
	outer := Wrap(ErrCodeInternal, err, "outer")
	if Is(outer, ErrCodeRecursion) {
		t.Error("outermost code wins when wrapped in a new *Error")
	}
}

func TestValidateBlockName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Valid", "inverter", false},
		{"ValidUnderscore", "_vdd_rail", false},
		{"ValidMixed", "Nand2-x4", false},
		{"Empty", "", true},
		{"LeadingDigit", "2nand", true},
		{"Space", "bad name", true},
		{"Slash", "a/b", true},
		{"TooLong", strings.Repeat("a", 129), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlockName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlockName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSchemaName(t *testing.T) {
	if err := ValidateSchemaName("sky130"); err != nil {
		t.Errorf("valid schema rejected: %v", err)
	}
	for _, bad := range []string{"", "SPICE", "has space", "semi;colon"} {
		if err := ValidateSchemaName(bad); err == nil {
			t.Errorf("ValidateSchemaName(%q) should fail", bad)
		}
	}
}
