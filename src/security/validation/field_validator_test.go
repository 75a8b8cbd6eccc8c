package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStringNotEmpty(t *testing.T) {
	assert.NoError(t, ValidateStringNotEmpty("value", "field"))

	err := ValidateStringNotEmpty("   ", "memo")
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "memo")
}

func TestValidateDateString(t *testing.T) {
	d, err := ValidateDateString("2024-02-29", "as_of_date")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), d)

	// Whitespace is tolerated.
	_, err = ValidateDateString(" 2024-01-31 ", "as_of_date")
	assert.NoError(t, err)

	for _, bad := range []string{"", "01/31/2024", "2024-13-01", "2023-02-29", "2024-1-5"} {
		_, err := ValidateDateString(bad, "as_of_date")
		assert.ErrorIs(t, err, ErrValidationFailed, bad)
	}
}

func TestValidateDateRange(t *testing.T) {
	assert.NoError(t, ValidateDateRange("2024-01-01", "2024-01-31"))
	assert.NoError(t, ValidateDateRange("2024-01-01", "2024-01-01"))

	err := ValidateDateRange("2024-02-01", "2024-01-01")
	assert.ErrorIs(t, err, ErrValidationFailed)

	assert.ErrorIs(t, ValidateDateRange("nope", "2024-01-01"), ErrValidationFailed)
	assert.ErrorIs(t, ValidateDateRange("2024-01-01", "nope"), ErrValidationFailed)
}
