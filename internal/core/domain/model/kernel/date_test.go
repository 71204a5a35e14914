package kernel_test

import (
	"testing"
	"time"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	t.Run("valid ISO date", func(t *testing.T) {
		d, err := kernel.ParseDate("2025-09-04")

		require.NoError(t, err)
		assert.Equal(t, "2025-09-04", d.String())
		assert.Equal(t, "04 Sep 2025", d.Format("02 Jan 2006"))
	})

	t.Run("invalid input", func(t *testing.T) {
		for _, input := range []string{"", "04-09-2025", "2025-13-01", "tomorrow"} {
			_, err := kernel.ParseDate(input)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, input)
		}
	})
}

func TestDate_Arithmetic(t *testing.T) {
	d, _ := kernel.ParseDate("2025-08-30")

	assert.Equal(t, "2025-09-02", d.AddDays(3).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))
	assert.Equal(t, d, d.AddDays(5).AddDays(-5))
}

func TestDateOf_UsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC) // 01:30 next day in IST

	assert.Equal(t, "2025-09-01", kernel.DateOf(instant).String())
	assert.Equal(t, "2025-09-02", kernel.DateOf(instant.In(kolkata)).String())
	assert.True(t, kernel.Date{}.IsZero())
}
