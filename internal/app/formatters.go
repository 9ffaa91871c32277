package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/basket/internal/models"
)

func basketStatus(v models.BasketValuation) string {
	if v.FullyExited {
		return "Exited"
	}
	return "Open"
}

// formatBasketList formats basket valuations as a markdown table.
func formatBasketList(list []models.BasketValuation, currency string) string {
	var sb strings.Builder
	sb.WriteString("# Baskets\n\n")

	if len(list) == 0 {
		sb.WriteString("No baskets found.\n")
		return sb.String()
	}

	sb.WriteString("| Name | ID | Created | Invested | Value | Return | Return % | Status |\n")
	sb.WriteString("|------|----|---------|----------|-------|--------|----------|--------|\n")
	for _, v := range list {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			v.Name,
			v.ID,
			v.CreatedAt.Format(models.DateLayout),
			models.FormatAmount(currency, v.Invested),
			models.FormatAmount(currency, v.CurrentValue),
			models.FormatSignedAmount(currency, v.ReturnAbs),
			models.FormatSignedPercent(v.ReturnPct),
			basketStatus(v),
		))
	}
	return sb.String()
}

func formatBasketDetail(v models.BasketValuation, currency string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Basket: %s\n\n", v.Name))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", v.ID))
	sb.WriteString(fmt.Sprintf("**Created:** %s\n", v.CreatedAt.Format(models.DateLayout)))
	sb.WriteString(fmt.Sprintf("**Status:** %s\n", basketStatus(v)))
	sb.WriteString(fmt.Sprintf("**Invested:** %s\n", models.FormatAmount(currency, v.Invested)))
	sb.WriteString(fmt.Sprintf("**Current Value:** %s\n", models.FormatAmount(currency, v.CurrentValue)))
	sb.WriteString(fmt.Sprintf("**Return:** %s (%s)\n\n", models.FormatSignedAmount(currency, v.ReturnAbs), models.FormatSignedPercent(v.ReturnPct)))

	if len(v.Positions) == 0 {
		sb.WriteString("No positions.\n")
		return sb.String()
	}

	sb.WriteString("## Positions\n\n")
	sb.WriteString("| Stock | Qty | Buy | Price | Invested | Value | Return | Return % | Exited |\n")
	sb.WriteString("|-------|-----|-----|-------|----------|-------|--------|----------|--------|\n")
	for _, p := range v.Positions {
		exited := ""
		if p.Exited {
			exited = p.SellDate
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
			p.Label,
			p.Quantity,
			models.FormatAmount(currency, p.BuyPrice),
			models.FormatAmount(currency, p.EffectivePrice),
			models.FormatAmount(currency, p.Invested),
			models.FormatAmount(currency, p.CurrentValue),
			models.FormatSignedAmount(currency, p.ReturnAbs),
			models.FormatSignedPercent(p.ReturnPct),
			exited,
		))
	}
	return sb.String()
}

func formatPortfolioSummary(s models.PortfolioSummary, currency string) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio Summary\n\n")
	sb.WriteString(fmt.Sprintf("**As of:** %s\n", s.AsOf.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("**Baskets:** %d (%d open positions, %d exited)\n", s.Baskets, s.OpenPositions, s.ExitedPositions))
	sb.WriteString(fmt.Sprintf("**Invested (open):** %s\n", models.FormatAmount(currency, s.TotalInvested)))
	sb.WriteString(fmt.Sprintf("**Current Value:** %s\n", models.FormatAmount(currency, s.TotalCurrentValue)))
	sb.WriteString(fmt.Sprintf("**Return:** %s (%s)\n", models.FormatSignedAmount(currency, s.TotalReturn), models.FormatSignedPercent(s.TotalReturnPct)))
	sb.WriteString(fmt.Sprintf("**XIRR:** %s\n", models.FormatSignedPercent(s.XIRR)))
	return sb.String()
}

func formatAllocationPlan(p models.AllocationPlan, currency string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Allocation of %s\n\n", models.FormatAmount(currency, p.Amount)))
	sb.WriteString("| Symbol | Price | Qty | Cost |\n")
	sb.WriteString("|--------|-------|-----|------|\n")
	for _, a := range p.Allocations {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n",
			a.Symbol,
			models.FormatAmount(currency, a.Price),
			a.Quantity,
			models.FormatAmount(currency, a.Cost),
		))
	}
	sb.WriteString(fmt.Sprintf("\n**Total Cost:** %s\n", models.FormatAmount(currency, p.TotalCost)))
	sb.WriteString(fmt.Sprintf("**Leftover:** %s\n", models.FormatAmount(currency, p.Leftover)))
	return sb.String()
}
