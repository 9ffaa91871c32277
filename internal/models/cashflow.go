package models

import (
	"fmt"
	"math"
)

// CashFlowInput is a cashflow as supplied by API and tool callers, with the
// date as a string in any format ParseDate accepts.
type CashFlowInput struct {
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

// ParseCashFlows converts caller supplied flows, rejecting bad dates and
// non-finite amounts.
func ParseCashFlows(in []CashFlowInput) ([]CashFlow, error) {
	out := make([]CashFlow, 0, len(in))
	for i, f := range in {
		if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) {
			return nil, fmt.Errorf("cashflow %d: amount is not a finite number", i)
		}
		d, ok := ParseDate(f.Date)
		if !ok {
			return nil, fmt.Errorf("cashflow %d: invalid date %q", i, f.Date)
		}
		out = append(out, CashFlow{Amount: f.Amount, Date: d})
	}
	return out, nil
}
