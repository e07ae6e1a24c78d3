package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, 2024, date.Year())
		assert.Equal(t, time.January, date.Month())
		assert.Equal(t, 15, date.Day())
		assert.Equal(t, time.UTC, date.Location())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := ParseDate("2024-13-15")
		assert.Error(t, err)
	})
}

func TestIsPastDue(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		t.Skip("tzdata not available")
	}
	due, _ := ParseDate("2026-10-15")

	t.Run("Same day is not late", func(t *testing.T) {
		now := time.Date(2026, 10, 15, 23, 59, 0, 0, manila)
		assert.False(t, IsPastDue(due, now, manila))
	})

	t.Run("Next day is late", func(t *testing.T) {
		now := time.Date(2026, 10, 16, 0, 1, 0, 0, manila)
		assert.True(t, IsPastDue(due, now, manila))
	})

	t.Run("Zone decides the day", func(t *testing.T) {
		// 17:00 UTC on the 15th is already the 16th in Manila
		now := time.Date(2026, 10, 15, 17, 0, 0, 0, time.UTC)
		assert.True(t, IsPastDue(due, now, manila))
		assert.False(t, IsPastDue(due, now, time.UTC))
	})

	t.Run("Old due date", func(t *testing.T) {
		old, _ := ParseDate("2020-01-01")
		assert.True(t, IsPastDue(old, time.Now(), nil))
	})
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "₱1000.00", FormatAmount("₱", decimal.NewFromInt(1000)))
	assert.Equal(t, "₱12.50", FormatAmount("₱", decimal.RequireFromString("12.5")))

	d, err := ParsePositiveAmount("400.25")
	assert.NoError(t, err)
	assert.Equal(t, "400.25", d.String())

	_, err = ParsePositiveAmount("0")
	assert.Error(t, err)
	_, err = ParsePositiveAmount("abc")
	assert.Error(t, err)
}
