package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"2024-03-01", true},
		{"2024-03-01T10:15:00Z", true},
		{"2024-03-01T10:15:00.123+05:30", true},
		{"2024-03-01T10:15:00", true},
		{"2024-03-01 10:15:00", true},
		{"  2024-03-01  ", true},
		{"", false},
		{"   ", false},
		{"yesterday", false},
		{"2024-13-40", false},
	}

	for _, tt := range tests {
		_, ok := ParseDate(tt.in)
		assert.Equal(t, tt.valid, ok, "ParseDate(%q)", tt.in)
	}
}

func TestStock_IsExited(t *testing.T) {
	tests := []struct {
		name  string
		stock Stock
		want  bool
	}{
		{"open", Stock{Symbol: "A"}, false},
		{"price and date", Stock{SellPrice: Float64Ptr(10), SellDate: "2024-01-02"}, true},
		{"price without date", Stock{SellPrice: Float64Ptr(10)}, false},
		{"date without price", Stock{SellDate: "2024-01-02"}, false},
		{"blank date", Stock{SellPrice: Float64Ptr(10), SellDate: " "}, false},
		{"invalid date", Stock{SellPrice: Float64Ptr(10), SellDate: "soon"}, false},
		{"NaN price", Stock{SellPrice: Float64Ptr(math.NaN()), SellDate: "2024-01-02"}, false},
		{"zero price", Stock{SellPrice: Float64Ptr(0), SellDate: "2024-01-02"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stock.IsExited())
		})
	}
}

func TestStock_EffectivePrice(t *testing.T) {
	assert.Equal(t, 90.0, Stock{BuyPrice: 100, LTP: Float64Ptr(120), SellPrice: Float64Ptr(90), SellDate: "2024-01-02"}.EffectivePrice())
	assert.Equal(t, 120.0, Stock{BuyPrice: 100, LTP: Float64Ptr(120), SellPrice: Float64Ptr(90)}.EffectivePrice())
	assert.Equal(t, 100.0, Stock{BuyPrice: 100}.EffectivePrice())
	assert.Equal(t, 100.0, Stock{BuyPrice: 100, LTP: Float64Ptr(math.Inf(1))}.EffectivePrice())
	assert.Equal(t, 0.0, Stock{BuyPrice: math.NaN()}.EffectivePrice())
}

func TestStock_Label(t *testing.T) {
	assert.Equal(t, "Reliance Industries (RELIANCE)", Stock{Symbol: "RELIANCE", Name: "Reliance Industries"}.Label())
	assert.Equal(t, "TCS", Stock{Symbol: "TCS"}.Label())
	assert.Equal(t, "TCS", Stock{Symbol: "TCS", Name: "TCS"}.Label())
}

func TestStock_UnmarshalJSON(t *testing.T) {
	data := `{
		"symbol": " INFY ",
		"name": "Infosys",
		"quantity": "12.9",
		"buy_price": "1450.25",
		"ltp": 1500,
		"sell_price": null,
		"sell_date": ""
	}`

	var s Stock
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	assert.Equal(t, "INFY", s.Symbol)
	assert.Equal(t, "Infosys", s.Name)
	assert.Equal(t, int64(12), s.Quantity)
	assert.Equal(t, 1450.25, s.BuyPrice)
	require.NotNil(t, s.LTP)
	assert.Equal(t, 1500.0, *s.LTP)
	assert.Nil(t, s.SellPrice)
	assert.False(t, s.IsExited())
}

func TestStock_UnmarshalJSON_Malformed(t *testing.T) {
	data := `{"symbol":"X","quantity":-4,"buy_price":"abc","ltp":"","sell_price":{"v":1}}`

	var s Stock
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	assert.Equal(t, int64(0), s.Quantity)
	assert.Equal(t, 0.0, s.BuyPrice)
	assert.Nil(t, s.LTP)
	assert.Nil(t, s.SellPrice)
}

func TestStock_UnmarshalJSON_LegacySellTime(t *testing.T) {
	data := `{"symbol":"X","quantity":1,"buy_price":10,"sell_price":12,"sell_time":"2024-02-03T09:00:00Z"}`

	var s Stock
	require.NoError(t, json.Unmarshal([]byte(data), &s))

	assert.Equal(t, "2024-02-03T09:00:00Z", s.SellDate)
	assert.True(t, s.IsExited())
}

func TestStock_RoundTripKeepsSellDate(t *testing.T) {
	in := Stock{Symbol: "X", Quantity: 3, BuyPrice: 10, SellPrice: Float64Ptr(11), SellDate: "2024-02-03"}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Stock
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestBasket_FullyExited(t *testing.T) {
	exited := Stock{SellPrice: Float64Ptr(10), SellDate: "2024-01-02"}

	assert.False(t, (&Basket{}).FullyExited(), "empty basket is not exited")
	assert.True(t, (&Basket{Stocks: []Stock{exited, exited}}).FullyExited())
	assert.False(t, (&Basket{Stocks: []Stock{exited, {Symbol: "open"}}}).FullyExited())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "+12.50%", FormatSignedPercent(12.5))
	assert.Equal(t, "-3.10%", FormatSignedPercent(-3.1))
	assert.Equal(t, "0.00%", FormatSignedPercent(-0.001))
	assert.Equal(t, "0.00%", FormatSignedPercent(math.NaN()))

	assert.Equal(t, "₹1,234,567.89", FormatAmount("₹", 1234567.891))
	assert.Equal(t, "₹999.00", FormatAmount("₹", 999))
	assert.Equal(t, "-$1,000.50", FormatAmount("$", -1000.5))

	assert.Equal(t, "+₹1,234.50", FormatSignedAmount("₹", 1234.5))
	assert.Equal(t, "-₹20.00", FormatSignedAmount("₹", -20))
	assert.Equal(t, "₹0.00", FormatSignedAmount("₹", -0.004))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, DirectionPositive, Classify(0.01))
	assert.Equal(t, DirectionNegative, Classify(-0.01))
	assert.Equal(t, DirectionZero, Classify(0))
	assert.Equal(t, DirectionZero, Classify(math.Copysign(0, -1)))
	assert.Equal(t, DirectionZero, Classify(math.NaN()))
}

func TestParseCashFlows(t *testing.T) {
	flows, err := ParseCashFlows([]CashFlowInput{
		{Amount: -1000, Date: "2024-01-01"},
		{Amount: 1100, Date: "2025-01-01T00:00:00Z"},
	})
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, 2024, flows[0].Date.Year())
	assert.Equal(t, 1100.0, flows[1].Amount)

	_, err = ParseCashFlows([]CashFlowInput{{Amount: 1, Date: "yesterday"}})
	assert.ErrorContains(t, err, "invalid date")

	_, err = ParseCashFlows([]CashFlowInput{{Amount: math.Inf(1), Date: "2024-01-01"}})
	assert.Error(t, err)
}

func TestValidateAllocation(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		candidates int
		valid      bool
	}{
		{"ordinary", 10000, 3, true},
		{"at amount limit", MaxAllocationAmount, 1, true},
		{"zero amount", 0, 1, false},
		{"NaN amount", math.NaN(), 1, false},
		{"above amount limit", MaxAllocationAmount * 2, 1, false},
		{"infinite amount", math.Inf(1), 1, false},
		{"too many stocks", 1000, MaxAllocationCandidates + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllocation(tt.amount, tt.candidates)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidBasket)
			}
		})
	}
}
