package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundFloat(t *testing.T) {
	assert.Equal(t, 1.23, RoundFloat(1.234, 2))
	assert.Equal(t, 1.24, RoundFloat(1.236, 2))
	assert.Equal(t, -1.24, RoundFloat(-1.236, 2))
	assert.Equal(t, 0.0, RoundFloat(0.0001, 2))
	assert.Equal(t, 100.0, RoundFloat(99.999, 2))
	assert.Equal(t, 0.1235, RoundFloat(0.12345, 4))
}

func TestWriteQuotedCSV_QuotesEveryField(t *testing.T) {
	var sb strings.Builder
	err := WriteQuotedCSV(&sb, [][]string{
		{"date", "account", "memo"},
		{"2024-01-15", "Consulting Income", "invoice #42"},
	})
	require.NoError(t, err)

	lines := strings.Split(sb.String(), "\r\n")
	require.Len(t, lines, 3) // trailing CRLF leaves an empty tail
	assert.Equal(t, `"date","account","memo"`, lines[0])
	assert.Equal(t, `"2024-01-15","Consulting Income","invoice #42"`, lines[1])
	assert.Empty(t, lines[2])
}

func TestWriteQuotedCSV_EscapesEmbeddedQuotesAndCommas(t *testing.T) {
	var sb strings.Builder
	err := WriteQuotedCSV(&sb, [][]string{
		{`said "hello"`, "a,b", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, `"said ""hello""","a,b",""`+"\r\n", sb.String())
}

func TestWriteQuotedCSV_EmptyInput(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteQuotedCSV(&sb, nil))
	assert.Empty(t, sb.String())
}
