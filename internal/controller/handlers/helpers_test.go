package handlers

import (
	"testing"
	"time"

	"github.com/Freeeeeet/exam_booking_bot/internal/controller/callbacks/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		cmd  string
		args string
	}{
		{"/day", "day", ""},
		{"/day 10/06/2025", "day", "10/06/2025"},
		{"/Day@exam_bot   2025-06-10 ", "day", "2025-06-10"},
		{"/examineradd Mario Rossi", "examineradd", "Mario Rossi"},
		{"ciao", "", "ciao"},
	}

	for _, tt := range tests {
		cmd, args := ParseCommand(tt.text)
		assert.Equal(t, tt.cmd, cmd, tt.text)
		assert.Equal(t, tt.args, args, tt.text)
	}
}

func TestParseMonthArg(t *testing.T) {
	now := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

	month, err := parseMonthArg("", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), month)

	month, err = parseMonthArg("2025-09", now)
	require.NoError(t, err)
	assert.Equal(t, time.September, month.Month())

	month, err = parseMonthArg("11/2025", now)
	require.NoError(t, err)
	assert.Equal(t, time.November, month.Month())

	_, err = parseMonthArg("settembre", now)
	assert.ErrorIs(t, err, common.ErrInvalidFormat)
}

func TestParseLimitArgs(t *testing.T) {
	now := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

	month, n, err := parseLimitArgs("", now)
	require.NoError(t, err)
	assert.Equal(t, time.June, month.Month())
	assert.Equal(t, -1, n)

	month, n, err = parseLimitArgs("4", now)
	require.NoError(t, err)
	assert.Equal(t, time.June, month.Month())
	assert.Equal(t, 4, n)

	month, n, err = parseLimitArgs("2025-07 0", now)
	require.NoError(t, err)
	assert.Equal(t, time.July, month.Month())
	assert.Equal(t, 0, n)

	_, _, err = parseLimitArgs("2025-07 tanti", now)
	assert.ErrorIs(t, err, common.ErrInvalidFormat)

	_, _, err = parseLimitArgs("2025-07 4 5", now)
	assert.ErrorIs(t, err, common.ErrInvalidFormat)
}

func TestParseYearArg(t *testing.T) {
	now := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)

	year, err := parseYearArg("", now)
	require.NoError(t, err)
	assert.Equal(t, 2025, year)

	year, err = parseYearArg("2024", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	_, err = parseYearArg("24", now)
	assert.Error(t, err)
}

func TestOptionalValue(t *testing.T) {
	assert.Equal(t, "", optionalValue(" - "))
	assert.Equal(t, "333 1234567", optionalValue("333 1234567 "))
}
