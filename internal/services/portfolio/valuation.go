package portfolio

import (
	"time"

	"github.com/bobmcallan/basket/internal/models"
)

// calendarDay strips the time of day, keeping the date as seen in t's location.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// returnPct is the percentage return on invested, or 0 for a zero-cost position.
func returnPct(returnAbs, invested float64) float64 {
	if invested == 0 {
		return 0
	}
	return returnAbs / invested * 100
}

// ValuePosition computes invested value, current value and returns for a single stock.
// Current value uses the effective price (sell, then LTP, then buy).
func ValuePosition(stock models.Stock) models.PositionValuation {
	qty := stock.Qty()
	invested := qty * stock.Buy()
	price := stock.EffectivePrice()
	current := qty * price
	ret := current - invested

	v := models.PositionValuation{
		Symbol:         stock.Symbol,
		Label:          stock.Label(),
		Quantity:       stock.Quantity,
		BuyPrice:       stock.Buy(),
		EffectivePrice: price,
		Invested:       invested,
		CurrentValue:   current,
		ReturnAbs:      ret,
		ReturnPct:      returnPct(ret, invested),
		Exited:         stock.IsExited(),
	}
	v.Direction = models.Classify(v.ReturnAbs)
	if v.Exited {
		v.SellDate = stock.SellDate
	}
	return v
}

// ValueBasket values every position and aggregates the basket totals. Return
// percentage is derived from the summed totals, not from per-position percentages.
func ValueBasket(basket *models.Basket) models.BasketValuation {
	if basket == nil {
		return models.BasketValuation{Direction: models.DirectionZero, Positions: []models.PositionValuation{}}
	}

	v := models.BasketValuation{
		ID:          basket.ID,
		Name:        basket.Name,
		CreatedAt:   basket.CreatedAt,
		FullyExited: basket.FullyExited(),
		Positions:   make([]models.PositionValuation, 0, len(basket.Stocks)),
	}

	for _, s := range basket.Stocks {
		pv := ValuePosition(s)
		v.Invested += pv.Invested
		v.CurrentValue += pv.CurrentValue
		v.Positions = append(v.Positions, pv)
	}

	v.ReturnAbs = v.CurrentValue - v.Invested
	v.ReturnPct = returnPct(v.ReturnAbs, v.Invested)
	v.Direction = models.Classify(v.ReturnAbs)
	return v
}

// AggregatePortfolio totals open positions across baskets and computes XIRR.
//
// Every position contributes its purchase as a negative cashflow on the basket
// date. Exited positions add their sale proceeds on the sell date and are left
// out of the invested/current totals. Open positions add their current value
// as a notional sale dated now.
func AggregatePortfolio(baskets []*models.Basket, now time.Time) models.PortfolioSummary {
	summary := models.PortfolioSummary{AsOf: now}
	var flows []models.CashFlow

	for _, b := range baskets {
		if b == nil {
			continue
		}
		summary.Baskets++

		for _, s := range b.Stocks {
			qty := s.Qty()
			invested := qty * s.Buy()
			if invested != 0 {
				flows = append(flows, models.CashFlow{Amount: -invested, Date: b.CreatedAt})
			}

			if s.IsExited() {
				summary.ExitedPositions++
				sellDate, _ := s.SellDateTime()
				if proceeds := qty * s.EffectivePrice(); proceeds != 0 {
					flows = append(flows, models.CashFlow{Amount: proceeds, Date: sellDate})
				}
				continue
			}

			summary.OpenPositions++
			current := qty * s.EffectivePrice()
			summary.TotalInvested += invested
			summary.TotalCurrentValue += current
			if current != 0 {
				flows = append(flows, models.CashFlow{Amount: current, Date: now})
			}
		}
	}

	summary.TotalReturn = summary.TotalCurrentValue - summary.TotalInvested
	summary.TotalReturnPct = returnPct(summary.TotalReturn, summary.TotalInvested)
	summary.Direction = models.Classify(summary.TotalReturn)
	summary.XIRR = ComputeXIRR(flows)
	summary.CashFlows = flows
	return summary
}
