package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CashFlow is a single dated amount used for XIRR.
// Negative amounts are capital deployed, positive amounts are capital returned
// (a sell, or the current value treated as a notional sell).
type CashFlow struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// Direction classifies a value for display: positive, negative or exactly zero.
type Direction string

const (
	DirectionPositive Direction = "positive"
	DirectionNegative Direction = "negative"
	DirectionZero     Direction = "zero"
)

// Classify returns the three-way direction of v. NaN is treated as zero.
func Classify(v float64) Direction {
	switch {
	case v > 0:
		return DirectionPositive
	case v < 0:
		return DirectionNegative
	default:
		return DirectionZero
	}
}

// Sign returns "+", "-" or "" for zero.
func (d Direction) Sign() string {
	switch d {
	case DirectionPositive:
		return "+"
	case DirectionNegative:
		return "-"
	default:
		return ""
	}
}

// FormatSignedPercent formats v as e.g. "+12.50%", "-3.10%" or "0.00%".
// Values that round to zero carry no sign.
func FormatSignedPercent(v float64) string {
	r := roundTo(v, 2)
	return Classify(r).Sign() + strconv.FormatFloat(math.Abs(r), 'f', 2, 64) + "%"
}

// FormatSignedAmount formats v with a currency symbol and thousands
// separators, e.g. "+₹1,234.50". Zero carries no sign.
func FormatSignedAmount(symbol string, v float64) string {
	r := roundTo(v, 2)
	return Classify(r).Sign() + FormatAmount(symbol, math.Abs(r))
}

// FormatAmount formats v with a currency symbol and thousands separators.
func FormatAmount(symbol string, v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(roundTo(v, 2)), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := fmt.Sprintf("%s%s.%s", symbol, b.String(), frac)
	if neg {
		return "-" + out
	}
	return out
}

func roundTo(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// PositionValuation is the derived value of one stock position.
type PositionValuation struct {
	Symbol         string    `json:"symbol"`
	Label          string    `json:"label"`
	Quantity       int64     `json:"quantity"`
	BuyPrice       float64   `json:"buy_price"`
	EffectivePrice float64   `json:"effective_price"`
	Invested       float64   `json:"invested"`
	CurrentValue   float64   `json:"current_value"`
	ReturnAbs      float64   `json:"return_abs"`
	ReturnPct      float64   `json:"return_pct"`
	Direction      Direction `json:"direction"`
	Exited         bool      `json:"exited"`
	SellDate       string    `json:"sell_date,omitempty"`
}

// BasketValuation aggregates a basket's positions.
type BasketValuation struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	CreatedAt    time.Time           `json:"created_at"`
	Invested     float64             `json:"invested"`
	CurrentValue float64             `json:"current_value"`
	ReturnAbs    float64             `json:"return_abs"`
	ReturnPct    float64             `json:"return_pct"`
	Direction    Direction           `json:"direction"`
	FullyExited  bool                `json:"fully_exited"`
	Positions    []PositionValuation `json:"positions"`
}

// PortfolioSummary is the dashboard total across baskets. Exited positions
// are excluded from the invested and current totals but count towards XIRR
// as realized cashflows.
type PortfolioSummary struct {
	Baskets           int        `json:"baskets"`
	OpenPositions     int        `json:"open_positions"`
	ExitedPositions   int        `json:"exited_positions"`
	TotalInvested     float64    `json:"total_invested"`
	TotalCurrentValue float64    `json:"total_current_value"`
	TotalReturn       float64    `json:"total_return"`
	TotalReturnPct    float64    `json:"total_return_pct"`
	XIRR              float64    `json:"xirr"`
	Direction         Direction  `json:"direction"`
	CashFlows         []CashFlow `json:"cash_flows,omitempty"`
	AsOf              time.Time  `json:"as_of"`
}
