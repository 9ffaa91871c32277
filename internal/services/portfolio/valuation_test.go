package portfolio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/basket/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestValuePosition_UsesLTP(t *testing.T) {
	s := models.Stock{Symbol: "TCS", Quantity: 10, BuyPrice: 100, LTP: ptr(120)}

	v := ValuePosition(s)

	assert.Equal(t, 1000.0, v.Invested)
	assert.Equal(t, 1200.0, v.CurrentValue)
	assert.Equal(t, 200.0, v.ReturnAbs)
	assert.InDelta(t, 20.0, v.ReturnPct, 1e-9)
	assert.Equal(t, models.DirectionPositive, v.Direction)
	assert.False(t, v.Exited)
	assert.Empty(t, v.SellDate)
}

func TestValuePosition_FallsBackToBuyPrice(t *testing.T) {
	s := models.Stock{Symbol: "INFY", Quantity: 5, BuyPrice: 200}

	v := ValuePosition(s)

	assert.Equal(t, 1000.0, v.Invested)
	assert.Equal(t, 1000.0, v.CurrentValue)
	assert.Equal(t, 0.0, v.ReturnPct)
	assert.Equal(t, models.DirectionZero, v.Direction)
}

func TestValuePosition_ExitedUsesSellPrice(t *testing.T) {
	s := models.Stock{
		Symbol:    "HDFC",
		Quantity:  4,
		BuyPrice:  100,
		LTP:       ptr(150),
		SellPrice: ptr(90),
		SellDate:  "2024-03-01",
	}

	v := ValuePosition(s)

	assert.True(t, v.Exited)
	assert.Equal(t, "2024-03-01", v.SellDate)
	assert.Equal(t, 360.0, v.CurrentValue)
	assert.InDelta(t, -10.0, v.ReturnPct, 1e-9)
	assert.Equal(t, models.DirectionNegative, v.Direction)
}

func TestValuePosition_SellPriceWithoutDateIsNotExited(t *testing.T) {
	s := models.Stock{Symbol: "ITC", Quantity: 2, BuyPrice: 100, LTP: ptr(110), SellPrice: ptr(130), SellDate: "   "}

	v := ValuePosition(s)

	assert.False(t, v.Exited)
	assert.Equal(t, 220.0, v.CurrentValue, "LTP applies while the position is open")
}

func TestValuePosition_ZeroInvested(t *testing.T) {
	tests := []struct {
		name  string
		stock models.Stock
	}{
		{"zero quantity", models.Stock{Symbol: "A", Quantity: 0, BuyPrice: 100, LTP: ptr(150)}},
		{"zero buy price", models.Stock{Symbol: "B", Quantity: 10, BuyPrice: 0, LTP: ptr(150)}},
		{"non-finite buy price", models.Stock{Symbol: "C", Quantity: 10, BuyPrice: math.NaN(), LTP: ptr(150)}},
		{"negative quantity", models.Stock{Symbol: "D", Quantity: -3, BuyPrice: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValuePosition(tt.stock)
			assert.Equal(t, 0.0, v.Invested)
			assert.Equal(t, 0.0, v.ReturnPct)
			assert.False(t, math.IsNaN(v.ReturnPct))
			assert.False(t, math.Signbit(v.ReturnPct))
		})
	}
}

func TestValuePosition_DirectionFollowsAbsoluteReturn(t *testing.T) {
	// Zero cost basis: no percentage, but the gain still reads as positive
	free := ValuePosition(models.Stock{Symbol: "BONUS", Quantity: 10, BuyPrice: 0, LTP: ptr(150)})
	assert.Equal(t, 0.0, free.ReturnPct)
	assert.Equal(t, 1500.0, free.ReturnAbs)
	assert.Equal(t, models.DirectionPositive, free.Direction)

	flat := ValuePosition(models.Stock{Symbol: "FLAT", Quantity: 10, BuyPrice: 100, LTP: ptr(100)})
	assert.Equal(t, models.DirectionZero, flat.Direction)
}

func TestValueBasket_AggregatesFromSums(t *testing.T) {
	b := &models.Basket{
		ID:        "b1",
		Name:      "Tech",
		CreatedAt: day(2024, 1, 1),
		Stocks: []models.Stock{
			{Symbol: "A", Quantity: 10, BuyPrice: 100, LTP: ptr(110)},  // 1000 -> 1100 (+10%)
			{Symbol: "B", Quantity: 1, BuyPrice: 9000, LTP: ptr(8100)}, // 9000 -> 8100 (-10%)
		},
	}

	v := ValueBasket(b)

	require.Len(t, v.Positions, 2)
	assert.Equal(t, v.Positions[0].Invested+v.Positions[1].Invested, v.Invested)
	assert.Equal(t, v.Positions[0].CurrentValue+v.Positions[1].CurrentValue, v.CurrentValue)
	assert.Equal(t, 10000.0, v.Invested)
	assert.Equal(t, 9200.0, v.CurrentValue)
	assert.Equal(t, -800.0, v.ReturnAbs)
	// Derived from totals (-8%), not the mean of per-position percentages (0%)
	assert.InDelta(t, -8.0, v.ReturnPct, 1e-9)
	assert.Equal(t, models.DirectionNegative, v.Direction)
	assert.False(t, v.FullyExited)
	assert.Equal(t, "b1", v.ID)
	assert.Equal(t, "Tech", v.Name)
}

func TestValueBasket_FullyExited(t *testing.T) {
	b := &models.Basket{
		Stocks: []models.Stock{
			{Symbol: "A", Quantity: 1, BuyPrice: 100, SellPrice: ptr(120), SellDate: "2024-05-01"},
			{Symbol: "B", Quantity: 1, BuyPrice: 100, SellPrice: ptr(80), SellDate: "2024-05-01T00:00:00Z"},
		},
	}

	v := ValueBasket(b)

	assert.True(t, v.FullyExited)
	assert.Equal(t, 200.0, v.CurrentValue)
	assert.Equal(t, 0.0, v.ReturnPct)
	assert.Equal(t, models.DirectionZero, v.Direction)
}

func TestValueBasket_EmptyAndNil(t *testing.T) {
	empty := ValueBasket(&models.Basket{ID: "e"})
	assert.False(t, empty.FullyExited)
	assert.Equal(t, 0.0, empty.Invested)
	assert.Equal(t, 0.0, empty.ReturnPct)
	assert.NotNil(t, empty.Positions)

	nilV := ValueBasket(nil)
	assert.Equal(t, models.DirectionZero, nilV.Direction)
	assert.Empty(t, nilV.Positions)
}

func TestAggregatePortfolio_ExcludesExitedFromTotals(t *testing.T) {
	now := day(2025, 1, 1)
	baskets := []*models.Basket{
		{
			ID:        "open",
			CreatedAt: day(2024, 1, 1),
			Stocks: []models.Stock{
				{Symbol: "A", Quantity: 10, BuyPrice: 100, LTP: ptr(110)},
			},
		},
		{
			ID:        "mixed",
			CreatedAt: day(2024, 1, 1),
			Stocks: []models.Stock{
				{Symbol: "B", Quantity: 5, BuyPrice: 200, LTP: ptr(220)},
				{Symbol: "C", Quantity: 2, BuyPrice: 500, SellPrice: ptr(600), SellDate: "2024-07-01"},
			},
		},
	}

	s := AggregatePortfolio(baskets, now)

	assert.Equal(t, 2, s.Baskets)
	assert.Equal(t, 2, s.OpenPositions)
	assert.Equal(t, 1, s.ExitedPositions)
	assert.Equal(t, 2000.0, s.TotalInvested)
	assert.Equal(t, 2200.0, s.TotalCurrentValue)
	assert.Equal(t, 200.0, s.TotalReturn)
	assert.InDelta(t, 10.0, s.TotalReturnPct, 1e-9)
	assert.Equal(t, models.DirectionPositive, s.Direction)
	assert.Equal(t, now, s.AsOf)

	// Three buys, one realized sell, two notional sells today
	require.Len(t, s.CashFlows, 6)
	var realized *models.CashFlow
	for i, f := range s.CashFlows {
		if f.Amount == 1200 {
			realized = &s.CashFlows[i]
		}
	}
	require.NotNil(t, realized, "exited position contributes its proceeds")
	assert.Equal(t, day(2024, 7, 1), realized.Date)

	assert.Greater(t, s.XIRR, 0.0)
	assert.False(t, math.IsNaN(s.XIRR))
}

func TestAggregatePortfolio_XIRRMatchesSimpleYear(t *testing.T) {
	now := day(2024, 1, 1)
	baskets := []*models.Basket{{
		CreatedAt: day(2023, 1, 1),
		Stocks:    []models.Stock{{Symbol: "A", Quantity: 10, BuyPrice: 100, LTP: ptr(110)}},
	}}

	s := AggregatePortfolio(baskets, now)

	assert.InDelta(t, 10.0, s.XIRR, 0.1)
}

func TestAggregatePortfolio_Empty(t *testing.T) {
	s := AggregatePortfolio(nil, time.Now())

	assert.Equal(t, 0, s.Baskets)
	assert.Equal(t, 0.0, s.TotalInvested)
	assert.Equal(t, 0.0, s.TotalReturnPct)
	assert.Equal(t, 0.0, s.XIRR)
	assert.Equal(t, models.DirectionZero, s.Direction)
}

func TestAggregatePortfolio_CreatedTodayHasNoRate(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	baskets := []*models.Basket{{
		CreatedAt: time.Date(2025, 3, 10, 9, 15, 0, 0, time.UTC),
		Stocks:    []models.Stock{{Symbol: "A", Quantity: 10, BuyPrice: 100, LTP: ptr(105)}},
	}}

	s := AggregatePortfolio(baskets, now)

	assert.Equal(t, 0.0, s.XIRR)
	assert.InDelta(t, 5.0, s.TotalReturnPct, 1e-9)
}

func TestAggregatePortfolio_FullyExitedPortfolio(t *testing.T) {
	now := day(2025, 1, 1)
	baskets := []*models.Basket{{
		CreatedAt: day(2023, 1, 1),
		Stocks: []models.Stock{
			{Symbol: "A", Quantity: 10, BuyPrice: 100, SellPrice: ptr(110), SellDate: "2024-01-01"},
		},
	}}

	s := AggregatePortfolio(baskets, now)

	assert.Equal(t, 0.0, s.TotalInvested)
	assert.Equal(t, 0.0, s.TotalCurrentValue)
	assert.Equal(t, 0.0, s.TotalReturnPct)
	assert.InDelta(t, 10.0, s.XIRR, 0.1, "realized flows still produce a rate")
}
