package services_test

import (
	"testing"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/services"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *location.Catalog {
	t.Helper()
	c, err := location.NewCatalog([]string{"Vyttila", "Kakkanad", "Edappally", "Palarivattom"}, kernel.MoneyFromInt(50))
	require.NoError(t, err)
	return c
}

func mustLocation(t *testing.T, c *location.Catalog, id string) location.DeliveryLocation {
	t.Helper()
	loc, err := c.Get(id)
	require.NoError(t, err)
	return loc
}

func TestOrderPricer_Parse(t *testing.T) {
	pricer := services.NewOrderPricer(menu.DefaultMenu())

	testCases := []struct {
		name     string
		input    string
		expected menu.Selection
	}{
		{"single line", "1 x 2", menu.Selection{1: 2}},
		{"two lines", "1 x 2, 3 x 1", menu.Selection{1: 2, 3: 1}},
		{"no whitespace and star", "1x2,3*1", menu.Selection{1: 2, 3: 1}},
		{"upper case separator", "2 X 3", menu.Selection{2: 3}},
		{"duplicates sum", "1 x 2, 1 x 3, 1*1", menu.Selection{1: 6}},
		{"invalid tokens skipped", "1 x 2, hello, 4 x", menu.Selection{1: 2}},
		{"out of range ids dropped", "7 x 1, 0 x 2, 6 x 1", menu.Selection{6: 1}},
		{"zero quantity dropped", "1 x 0, 2 x 1", menu.Selection{2: 1}},
		{"surrounding whitespace", "  5 x 4 ,\n 6 x 1  ", menu.Selection{5: 4, 6: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := pricer.Parse(tc.input)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	t.Run("nothing valid is a parse failure", func(t *testing.T) {
		for _, input := range []string{"", "two sadhyas please", "9 x 1", "1 x 0", "1 x 99999999999999999999"} {
			_, err := pricer.Parse(input)

			require.ErrorIs(t, err, services.ErrOrderLinesEmpty, input)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, input)
		}
	})

	t.Run("unavailable items are dropped", func(t *testing.T) {
		items := menu.DefaultItems()
		items[1].Available = false
		m, err := menu.NewMenu(items)
		require.NoError(t, err)

		got, err := services.NewOrderPricer(m).Parse("1 x 1, 2 x 1")

		require.NoError(t, err)
		assert.Equal(t, menu.Selection{1: 1}, got)
	})
}

func TestOrderPricer_CalculateTotal(t *testing.T) {
	pricer := services.NewOrderPricer(menu.DefaultMenu())
	catalog := testCatalog(t)

	t.Run("delivery adds the fee", func(t *testing.T) {
		total, err := pricer.CalculateTotal(menu.Selection{1: 2, 3: 1}, mustLocation(t, catalog, "vyttila_delivery"))

		require.NoError(t, err)
		assert.Equal(t, "390.00", total.String())
	})

	t.Run("pickup has no fee", func(t *testing.T) {
		total, err := pricer.CalculateTotal(menu.Selection{1: 2, 3: 1}, mustLocation(t, catalog, location.PickupID))

		require.NoError(t, err)
		assert.Equal(t, "340.00", total.String())
	})

	t.Run("deterministic", func(t *testing.T) {
		loc := mustLocation(t, catalog, "kakkanad_delivery")
		first, err := pricer.CalculateTotal(menu.Selection{2: 3, 4: 2, 5: 1}, loc)
		require.NoError(t, err)

		for range 10 {
			again, err := pricer.CalculateTotal(menu.Selection{5: 1, 4: 2, 2: 3}, loc)
			require.NoError(t, err)
			assert.True(t, first.Equal(again))
		}
		assert.Equal(t, "760.00", first.String())
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := pricer.CalculateTotal(menu.Selection{42: 1}, mustLocation(t, catalog, "vyttila_delivery"))
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("empty selection", func(t *testing.T) {
		_, err := pricer.CalculateTotal(menu.Selection{}, mustLocation(t, catalog, "vyttila_delivery"))
		require.ErrorIs(t, err, services.ErrOrderLinesEmpty)
	})

	t.Run("unconstructed location", func(t *testing.T) {
		_, err := pricer.CalculateTotal(menu.Selection{1: 1}, location.DeliveryLocation{})
		require.ErrorIs(t, err, location.ErrDeliveryLocationIsNotConstructed)
	})
}

func TestOrderPricer_Summarize(t *testing.T) {
	pricer := services.NewOrderPricer(menu.DefaultMenu())
	catalog := testCatalog(t)

	t.Run("delivery", func(t *testing.T) {
		quote, err := pricer.Summarize(menu.Selection{3: 1, 1: 2}, mustLocation(t, catalog, "vyttila_delivery"))

		require.NoError(t, err)
		assert.Equal(t,
			"• Veg Sadhya x 2 = ₹300\n"+
				"• Palada Pradhaman x 1 = ₹40\n"+
				"• Delivery Fee = ₹50",
			quote.Text())
	})

	t.Run("pickup", func(t *testing.T) {
		quote, err := pricer.Summarize(menu.Selection{2: 1}, mustLocation(t, catalog, location.PickupID))

		require.NoError(t, err)
		assert.Equal(t, "• Non-Veg Sadhya x 1 = ₹200", quote.Text())
		assert.Equal(t, "200.00", quote.Total.String())
	})
}
