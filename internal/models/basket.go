// Package models defines data structures for the basket tracker
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for sell dates and cashflow display.
const DateLayout = "2006-01-02"

// dateLayouts lists the accepted sell date formats, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate parses a calendar date string. Empty, whitespace-only and
// unparseable strings return ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Stock is one holding inside a basket.
type Stock struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name,omitempty"`
	Quantity  int64    `json:"quantity"`
	BuyPrice  float64  `json:"buy_price"`
	LTP       *float64 `json:"ltp,omitempty"`        // last traded price, absent until fetched
	SellPrice *float64 `json:"sell_price,omitempty"` // set on exit
	SellDate  string   `json:"sell_date,omitempty"`  // YYYY-MM-DD, set on exit
}

// finite coalesces NaN and ±Inf to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Qty returns the share count as a float, coalescing negatives to zero.
func (s Stock) Qty() float64 {
	if s.Quantity < 0 {
		return 0
	}
	return float64(s.Quantity)
}

// Buy returns the cost basis per share with non-finite values coalesced to zero.
func (s Stock) Buy() float64 {
	return finite(s.BuyPrice)
}

// HasLTP reports whether a usable last traded price is present.
func (s Stock) HasLTP() bool {
	return s.LTP != nil && !math.IsNaN(*s.LTP) && !math.IsInf(*s.LTP, 0)
}

// SellDateTime returns the parsed sell date, if valid.
func (s Stock) SellDateTime() (time.Time, bool) {
	return ParseDate(s.SellDate)
}

// IsExited reports whether the position has been exited. Both a finite sell
// price and a valid sell date are required.
func (s Stock) IsExited() bool {
	if s.SellPrice == nil || math.IsNaN(*s.SellPrice) || math.IsInf(*s.SellPrice, 0) {
		return false
	}
	_, ok := s.SellDateTime()
	return ok
}

// EffectivePrice returns the price used wherever a "current" value is needed:
// the sell price once exited, else the LTP when known, else the buy price.
func (s Stock) EffectivePrice() float64 {
	if s.IsExited() {
		return *s.SellPrice
	}
	if s.HasLTP() {
		return *s.LTP
	}
	return s.Buy()
}

// Label returns "Name (SYMBOL)" when a distinct name is known, else the symbol.
func (s Stock) Label() string {
	if s.Name != "" && s.Name != s.Symbol {
		return s.Name + " (" + s.Symbol + ")"
	}
	return s.Symbol
}

// stockJSON mirrors Stock with raw numeric fields so malformed values can be
// coalesced instead of failing the whole document.
type stockJSON struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Quantity  json.RawMessage `json:"quantity"`
	BuyPrice  json.RawMessage `json:"buy_price"`
	LTP       json.RawMessage `json:"ltp"`
	SellPrice json.RawMessage `json:"sell_price"`
	SellDate  *string         `json:"sell_date"`
	SellTime  *string         `json:"sell_time"` // legacy alias of sell_date
}

// UnmarshalJSON decodes a stock leniently: numbers may arrive as strings,
// malformed numeric fields become zero/absent, and the legacy sell_time field
// is accepted when sell_date is missing.
func (s *Stock) UnmarshalJSON(data []byte) error {
	var raw stockJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Stock{
		Symbol: strings.TrimSpace(raw.Symbol),
		Name:   strings.TrimSpace(raw.Name),
	}
	if q, ok := parseFlexNumber(raw.Quantity); ok && q > 0 {
		s.Quantity = int64(math.Floor(q))
	}
	if b, ok := parseFlexNumber(raw.BuyPrice); ok {
		s.BuyPrice = b
	}
	if l, ok := parseFlexNumber(raw.LTP); ok {
		s.LTP = &l
	}
	if p, ok := parseFlexNumber(raw.SellPrice); ok {
		s.SellPrice = &p
	}

	switch {
	case raw.SellTime != nil && strings.TrimSpace(*raw.SellTime) != "":
		s.SellDate = *raw.SellTime
	case raw.SellDate != nil:
		s.SellDate = *raw.SellDate
	}
	return nil
}

// parseFlexNumber accepts a JSON number or numeric string. null, empty,
// malformed and non-finite values return ok=false.
func parseFlexNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, !math.IsNaN(num) && !math.IsInf(num, 0)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

// Basket is a named, dated collection of stock positions bought together.
type Basket struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // single investment date for every stock
	UpdatedAt time.Time `json:"updated_at"`
	Stocks    []Stock   `json:"stocks"`
}

// FullyExited reports whether the basket has stocks and every one is exited.
func (b *Basket) FullyExited() bool {
	if len(b.Stocks) == 0 {
		return false
	}
	for _, s := range b.Stocks {
		if !s.IsExited() {
			return false
		}
	}
	return true
}

// Symbols returns the basket's symbols in order.
func (b *Basket) Symbols() []string {
	out := make([]string, len(b.Stocks))
	for i, s := range b.Stocks {
		out[i] = s.Symbol
	}
	return out
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
