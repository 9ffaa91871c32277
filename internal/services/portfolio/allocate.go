package portfolio

import (
	"math"

	"github.com/bobmcallan/basket/internal/models"
)

// allocationTolerance is the leftover below which the top-up pass stops (one paisa/cent).
const allocationTolerance = 0.01

// roundPrice rounds a price to 2 decimal places, mapping non-finite prices to 0.
func roundPrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Round(p*100) / 100
}

// maxQuantity caps a single allocation so quantities and costs stay exact in float64.
const maxQuantity = int64(1) << 53

// Allocate converts amount into whole-share quantities across candidates.
//
// Each candidate first receives floor((amount/N)/price) shares. Leftover cash
// is then handed out one share at a time, always to the candidate with the
// lowest allocated value whose price still fits in the remainder (ties go to
// the earlier candidate), until no share fits or less than one cent remains.
// Candidates with a non-positive price get nothing. Total cost never exceeds
// amount. Results follow the order of candidates; an empty slice is returned
// for empty input or a non-positive amount.
func Allocate(amount float64, candidates []models.AllocationCandidate) []models.Allocation {
	if len(candidates) == 0 || !(amount > 0) || math.IsInf(amount, 0) {
		return []models.Allocation{}
	}

	out := make([]models.Allocation, len(candidates))
	baseShare := amount / float64(len(candidates))
	spent := 0.0

	for i, c := range candidates {
		price := roundPrice(c.Price)
		out[i] = models.Allocation{
			Symbol: c.Symbol,
			Name:   c.Name,
			Price:  price,
		}
		if price <= 0 {
			continue
		}
		qty := math.Min(math.Floor(baseShare/price), float64(maxQuantity))
		out[i].Quantity = int64(qty)
		out[i].Cost = qty * price
		spent += out[i].Cost
	}

	remaining := amount - spent

	for remaining > allocationTolerance {
		if filled := fillToLevel(out, remaining); filled > 0 {
			remaining -= filled
			continue
		}

		idx := cheapestAffordable(out, remaining)
		if idx < 0 {
			break
		}
		addUnits(&out[idx], 1)
		remaining -= out[idx].Price
	}

	return out
}

// affordable reports whether one more share of a fits in remaining.
func affordable(a models.Allocation, remaining float64) bool {
	return a.Price > 0 && a.Price <= remaining && a.Quantity < maxQuantity
}

// cheapestAffordable returns the index of the affordable allocation with the
// lowest cost, preferring the earlier index on ties, or -1 when none fits.
func cheapestAffordable(out []models.Allocation, remaining float64) int {
	best := -1
	for i, a := range out {
		if !affordable(a, remaining) {
			continue
		}
		if best < 0 || a.Cost < out[best].Cost {
			best = i
		}
	}
	return best
}

func addUnits(a *models.Allocation, n int64) {
	a.Quantity += n
	a.Cost = float64(a.Quantity) * a.Price
}

// fillToLevel hands out many top-up shares at once and returns the cash spent.
//
// While every affordable candidate stays affordable, the one-share-at-a-time
// loop reaches a fixed state when the lowest cost first climbs to some level L:
// each candidate below L holds exactly ceil((L-cost)/price) extra shares. The
// highest L whose spend still leaves the largest affordable price in hand is
// found by bisection and applied directly. Zero is returned when no level above
// the current lowest cost fits the budget.
func fillToLevel(out []models.Allocation, remaining float64) float64 {
	var active []int
	maxPrice, minCost, ceiling := 0.0, math.Inf(1), math.Inf(1)
	for i, a := range out {
		if !affordable(a, remaining) {
			continue
		}
		active = append(active, i)
		maxPrice = math.Max(maxPrice, a.Price)
		minCost = math.Min(minCost, a.Cost)
		ceiling = math.Min(ceiling, a.Cost+float64(maxQuantity-a.Quantity)*a.Price)
	}
	if len(active) == 0 {
		return 0
	}

	budget := remaining - maxPrice
	if budget <= 0 {
		return 0
	}

	units := func(a models.Allocation, level float64) int64 {
		if a.Cost >= level {
			return 0
		}
		n := math.Ceil((level - a.Cost) / a.Price)
		return int64(math.Min(n, float64(maxQuantity-a.Quantity)))
	}
	spend := func(level float64) float64 {
		total := 0.0
		for _, i := range active {
			total += float64(units(out[i], level)) * out[i].Price
		}
		return total
	}

	lo, hi := minCost, math.Min(minCost+budget, ceiling)
	if spend(hi) <= budget {
		lo = hi
	} else {
		for iter := 0; iter < 200; iter++ {
			mid := lo + (hi-lo)/2
			if mid <= lo || mid >= hi {
				break
			}
			if spend(mid) <= budget {
				lo = mid
			} else {
				hi = mid
			}
		}
	}

	filled := 0.0
	for _, i := range active {
		if n := units(out[i], lo); n > 0 {
			before := out[i].Cost
			addUnits(&out[i], n)
			filled += out[i].Cost - before
		}
	}
	return filled
}

// PlanAllocation runs Allocate and summarises the spend against amount.
func PlanAllocation(amount float64, candidates []models.AllocationCandidate) models.AllocationPlan {
	allocations := Allocate(amount, candidates)
	total := 0.0
	for _, a := range allocations {
		total += a.Cost
	}
	leftover := 0.0
	if amount > 0 {
		leftover = amount - total
	}
	return models.AllocationPlan{
		Amount:      amount,
		Allocations: allocations,
		TotalCost:   total,
		Leftover:    leftover,
	}
}
