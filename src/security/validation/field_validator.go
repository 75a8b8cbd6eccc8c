// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strings"
	"time"
)

// ErrValidationFailed is the sentinel wrapped by every validation error in
// this package; handlers map it to a 400 response.
var ErrValidationFailed = fmt.Errorf("validation failed")

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateDateString checks if a string is a valid date in "YYYY-MM-DD"
// format and returns it parsed.
func ValidateDateString(s, fieldName string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if err := ValidateStringNotEmpty(trimmed, fieldName); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse("2006-01-02", trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is not a valid date (expected YYYY-MM-DD): %v", ErrValidationFailed, fieldName, s, err)
	}
	if t.Format("2006-01-02") != trimmed {
		return time.Time{}, fmt.Errorf("%w: %s ('%s') is an invalid date (e.g., day/month mismatch)", ErrValidationFailed, fieldName, s)
	}
	return t, nil
}

// ValidateDateRange checks both dates and that start does not follow end.
func ValidateDateRange(start, end string) error {
	s, err := ValidateDateString(start, "start date")
	if err != nil {
		return err
	}
	e, err := ValidateDateString(end, "end date")
	if err != nil {
		return err
	}
	if s.After(e) {
		return fmt.Errorf("%w: start date %s is after end date %s", ErrValidationFailed, start, end)
	}
	return nil
}
