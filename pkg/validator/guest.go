package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email field is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email does not match local@domain.tld
	ErrInvalidEmail = errors.New("email must be in the form local@domain.tld")

	// ErrEmptyContactNumber indicates the contact number field is empty
	ErrEmptyContactNumber = errors.New("contact number cannot be empty")

	// ErrInvalidContactNumber indicates the contact number is not 10 digits
	ErrInvalidContactNumber = errors.New("contact number must be exactly 10 digits")

	// ErrEmptyPAN indicates PAN is required but missing
	ErrEmptyPAN = errors.New("PAN is required for this booking")

	// ErrInvalidPAN indicates PAN does not match 5 letters + 4 digits + 1 letter
	ErrInvalidPAN = errors.New("PAN must be 5 letters, 4 digits and 1 letter")

	// ErrEmptyPassportNumber indicates passport number is required but missing
	ErrEmptyPassportNumber = errors.New("passport number is required for this booking")

	// ErrInvalidPassportNumber indicates passport number is not alphanumeric
	ErrInvalidPassportNumber = errors.New("passport number must be alphanumeric")

	// ErrEmptyPassportExpiry indicates passport expiry is required but missing
	ErrEmptyPassportExpiry = errors.New("passport expiry is required for this booking")

	// ErrInvalidChildAge indicates a child age outside the 1-17 range
	ErrInvalidChildAge = errors.New("child age must be between 1 and 17")
)

var (
	emailRegex    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	contactRegex  = regexp.MustCompile(`^\d{10}$`)
	panRegex      = regexp.MustCompile(`^[A-Za-z]{5}[0-9]{4}[A-Za-z]$`)
	passportRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// GuestValidator handles guest field validation
type GuestValidator struct{}

// NewGuestValidator creates a new guest validator instance
func NewGuestValidator() *GuestValidator {
	return &GuestValidator{}
}

// ValidateEmail checks the standard local@domain.tld shape
func (v *GuestValidator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateContactNumber requires exactly 10 digits. Common separators are
// stripped before the check.
func (v *GuestValidator) ValidateContactNumber(number string) error {
	sanitized := v.SanitizeNumber(number)
	if sanitized == "" {
		return ErrEmptyContactNumber
	}
	if !contactRegex.MatchString(sanitized) {
		return ErrInvalidContactNumber
	}
	return nil
}

// SanitizeNumber removes spaces and dashes from a contact number
func (v *GuestValidator) SanitizeNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	number = strings.ReplaceAll(number, "-", "")
	return number
}

// ValidatePAN checks the PAN field. When mandatory, an empty PAN fails.
// Whether mandatory or not, a non-empty PAN must match the pattern of
// 5 letters + 4 digits + 1 letter.
func (v *GuestValidator) ValidatePAN(pan string, mandatory bool) error {
	pan = strings.TrimSpace(pan)
	if pan == "" {
		if mandatory {
			return ErrEmptyPAN
		}
		return nil
	}
	if !panRegex.MatchString(pan) {
		return ErrInvalidPAN
	}
	return nil
}

// ValidatePassportNumber checks the passport number field. When mandatory,
// empty fails; a non-empty value must be alphanumeric either way.
func (v *GuestValidator) ValidatePassportNumber(number string, mandatory bool) error {
	number = strings.TrimSpace(number)
	if number == "" {
		if mandatory {
			return ErrEmptyPassportNumber
		}
		return nil
	}
	if !passportRegex.MatchString(number) {
		return ErrInvalidPassportNumber
	}
	return nil
}

// ValidatePassportExpiry checks the passport expiry field. The format is
// unconstrained beyond being present when mandatory.
func (v *GuestValidator) ValidatePassportExpiry(expiry string, mandatory bool) error {
	if mandatory && strings.TrimSpace(expiry) == "" {
		return ErrEmptyPassportExpiry
	}
	return nil
}

// ValidateChildAge requires an integer age in the inclusive range 1-17
func (v *GuestValidator) ValidateChildAge(age int) error {
	if age < 1 || age > 17 {
		return ErrInvalidChildAge
	}
	return nil
}
