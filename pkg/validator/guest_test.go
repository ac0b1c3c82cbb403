package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	v := NewGuestValidator()

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"valid email", "guest@example.com", nil},
		{"valid email with plus", "guest+tag@example.co.in", nil},
		{"empty email", "", ErrEmptyEmail},
		{"whitespace only", "   ", ErrEmptyEmail},
		{"missing domain", "guest@", ErrInvalidEmail},
		{"missing tld", "guest@example", ErrInvalidEmail},
		{"missing local part", "@example.com", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateEmail(tt.email)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateContactNumber(t *testing.T) {
	v := NewGuestValidator()

	tests := []struct {
		name    string
		number  string
		wantErr error
	}{
		{"valid 10 digits", "9876543210", nil},
		{"valid with spaces", "98765 43210", nil},
		{"valid with dashes", "98765-43210", nil},
		{"empty", "", ErrEmptyContactNumber},
		{"too short", "987654321", ErrInvalidContactNumber},
		{"too long", "98765432100", ErrInvalidContactNumber},
		{"contains letters", "98765abcde", ErrInvalidContactNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateContactNumber(tt.number)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidatePAN(t *testing.T) {
	v := NewGuestValidator()

	tests := []struct {
		name      string
		pan       string
		mandatory bool
		wantErr   error
	}{
		{"empty and mandatory", "", true, ErrEmptyPAN},
		{"empty and optional", "", false, nil},
		{"valid mandatory", "ABCDE1234F", true, nil},
		{"valid optional", "abcde1234f", false, nil},
		{"wrong shape optional", "AB1234567C", false, ErrInvalidPAN},
		{"wrong shape mandatory", "1234567890", true, ErrInvalidPAN},
		{"too short", "ABCDE123F", false, ErrInvalidPAN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePAN(tt.pan, tt.mandatory)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidatePassportNumber(t *testing.T) {
	v := NewGuestValidator()

	// Non-empty passport numbers get a format check even when optional.
	assert.NoError(t, v.ValidatePassportNumber("AB1234567", false))
	assert.NoError(t, v.ValidatePassportNumber("AB1234567", true))
	assert.ErrorIs(t, v.ValidatePassportNumber("", true), ErrEmptyPassportNumber)
	assert.NoError(t, v.ValidatePassportNumber("", false))
	assert.ErrorIs(t, v.ValidatePassportNumber("AB-1234567", false), ErrInvalidPassportNumber)
}

func TestValidatePassportExpiry(t *testing.T) {
	v := NewGuestValidator()

	assert.ErrorIs(t, v.ValidatePassportExpiry("", true), ErrEmptyPassportExpiry)
	assert.NoError(t, v.ValidatePassportExpiry("", false))
	assert.NoError(t, v.ValidatePassportExpiry("2030-06-15", true))
}

func TestValidateChildAge(t *testing.T) {
	v := NewGuestValidator()

	assert.NoError(t, v.ValidateChildAge(1))
	assert.NoError(t, v.ValidateChildAge(17))
	assert.ErrorIs(t, v.ValidateChildAge(0), ErrInvalidChildAge)
	assert.ErrorIs(t, v.ValidateChildAge(18), ErrInvalidChildAge)
	assert.ErrorIs(t, v.ValidateChildAge(-3), ErrInvalidChildAge)
}

func TestSanitizeNumber(t *testing.T) {
	v := NewGuestValidator()

	assert.Equal(t, "9876543210", v.SanitizeNumber("98765 432-10"))
	assert.Equal(t, "", v.SanitizeNumber(" - "))
}
