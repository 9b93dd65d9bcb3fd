package errors

import (
	"math"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"one", 1, false},
		{"large", 400, false},
		{"zero", 0, true},
		{"negative", -3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive(ErrCodeInvalidBoard, "width", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%d) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidBoard) {
				t.Errorf("ValidatePositive(%d) returned wrong error code: %v", tt.value, err)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	if err := ValidateRange(ErrCodeInvalidBoard, "cores", 18, 1, 18); err != nil {
		t.Errorf("ValidateRange(18) error = %v", err)
	}
	if err := ValidateRange(ErrCodeInvalidBoard, "cores", 19, 1, 18); err == nil {
		t.Error("ValidateRange(19) should fail")
	}
}

func TestValidateProbability(t *testing.T) {
	tests := []struct {
		p       float64
		wantErr bool
	}{
		{0, false},
		{0.5, false},
		{1, false},
		{-0.1, true},
		{1.01, true},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		err := ValidateProbability("probability", tt.p)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateProbability(%v) error = %v, wantErr %v", tt.p, err, tt.wantErr)
		}
	}
}

func TestValidateOneOf(t *testing.T) {
	allowed := []string{"loader", "runtime"}
	if err := ValidateOneOf(ErrCodeInvalidFormat, "format", "loader", allowed); err != nil {
		t.Errorf("ValidateOneOf(loader) error = %v", err)
	}
	err := ValidateOneOf(ErrCodeInvalidFormat, "format", "ybug", allowed)
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("ValidateOneOf(ybug) error = %v, want INVALID_FORMAT", err)
	}
}
