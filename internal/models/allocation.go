package models

import "fmt"

// MaxAllocationAmount bounds the cash a single allocation may split.
const MaxAllocationAmount = 1e12

// MaxAllocationCandidates bounds the number of stocks in one allocation.
const MaxAllocationCandidates = 500

// ValidateAllocation checks an allocation request against the amount and size bounds.
func ValidateAllocation(amount float64, candidates int) error {
	if !(amount > 0) {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidBasket)
	}
	if amount > MaxAllocationAmount {
		return fmt.Errorf("%w: amount exceeds %.0f", ErrInvalidBasket, MaxAllocationAmount)
	}
	if candidates > MaxAllocationCandidates {
		return fmt.Errorf("%w: at most %d stocks per allocation", ErrInvalidBasket, MaxAllocationCandidates)
	}
	return nil
}

// AllocationCandidate is a stock offered to the allocator at a live price.
type AllocationCandidate struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Price  float64 `json:"price"`
}

// Allocation is the whole-share outcome for one candidate.
type Allocation struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name,omitempty"`
	Price    float64 `json:"price"` // rounded to 2 decimal places
	Quantity int64   `json:"quantity"`
	Cost     float64 `json:"cost"`
}

// AllocationPlan is an allocation together with its budget totals.
type AllocationPlan struct {
	Amount      float64      `json:"amount"`
	Allocations []Allocation `json:"allocations"`
	TotalCost   float64      `json:"total_cost"`
	Leftover    float64      `json:"leftover"`
}

// CreateBasketRequest describes a new basket. When Amount is positive and the
// stocks carry no quantities, quantities are allocated from live prices.
type CreateBasketRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount,omitempty"`
	Stocks []Stock `json:"stocks"`
}
