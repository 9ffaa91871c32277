package portfolio

import (
	"math"
	"sort"

	"github.com/bobmcallan/basket/internal/models"
)

const (
	xirrInitialGuess = 0.10
	xirrMaxIter      = 100
	xirrTolerance    = 1e-6
	xirrZeroBand     = 0.005 // half a basis point, in percent
	daysPerYear      = 365.0
)

// ComputeXIRR computes the annualised internal rate of return of a dated
// cashflow stream using Newton-Raphson iteration on NPV.
// Negative amounts are money out (buys), positive amounts are money in (sells,
// current value). Returns the rate as a percentage, or 0 when no rate exists:
// fewer than two flows, no mix of inflows and outflows, or all flows on the
// same day. The result is always finite.
func ComputeXIRR(flows []models.CashFlow) float64 {
	if len(flows) < 2 {
		return 0
	}

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	sorted := make([]models.CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	base := calendarDay(sorted[0].Date)
	years := make([]float64, len(sorted))
	for i, f := range sorted {
		days := calendarDay(f.Date).Sub(base).Hours() / 24
		years[i] = days / daysPerYear
	}
	if years[len(years)-1] == 0 {
		return 0
	}

	return cleanRate(solveXIRR(sorted, years) * 100)
}

// solveXIRR runs Newton-Raphson from a 10% guess. It stops early when NPV is
// within tolerance or the derivative vanishes, and otherwise returns the last
// iterate after the iteration cap.
func solveXIRR(flows []models.CashFlow, years []float64) float64 {
	rate := xirrInitialGuess

	for iter := 0; iter < xirrMaxIter; iter++ {
		value := npv(flows, years, rate)
		if math.Abs(value) < xirrTolerance {
			return rate
		}

		slope := dnpv(flows, years, rate)
		if slope == 0 {
			break
		}

		rate -= value / slope
	}

	return rate
}

func npv(flows []models.CashFlow, years []float64, rate float64) float64 {
	sum := 0.0
	for i, f := range flows {
		sum += f.Amount / math.Pow(1+rate, years[i])
	}
	return sum
}

func dnpv(flows []models.CashFlow, years []float64, rate float64) float64 {
	sum := 0.0
	for i, f := range flows {
		sum -= years[i] * f.Amount / math.Pow(1+rate, years[i]+1)
	}
	return sum
}

// cleanRate maps non-finite results and values inside the zero band
// (including negative zero) to exactly 0.
func cleanRate(pct float64) float64 {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	if math.Abs(pct) < xirrZeroBand {
		return 0
	}
	return pct
}
