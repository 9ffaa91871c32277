package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/interfaces"
	"github.com/bobmcallan/basket/internal/models"
	"github.com/bobmcallan/basket/internal/services/portfolio"
)

func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := common.GetVersionInfo()
		result := fmt.Sprintf("Basket MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			info.Version, info.Build, info.GitCommit)
		return textResult(result), nil
	}
}

func handleListBaskets(baskets interfaces.BasketService, currency string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := baskets.ListBasketValuations(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List baskets failed")
			return errorResult(fmt.Sprintf("Error listing baskets: %v", err)), nil
		}
		return textResult(formatBasketList(list, currency)), nil
	}
}

func handleGetBasket(baskets interfaces.BasketService, currency string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("basket_id")
		if err != nil || strings.TrimSpace(id) == "" {
			return errorResult("Error: basket_id parameter is required"), nil
		}

		var v *models.BasketValuation
		if request.GetBool("refresh", false) {
			v, err = baskets.RefreshPrices(ctx, id)
		} else {
			v, err = baskets.GetBasketValuation(ctx, id)
		}
		if err != nil {
			if errors.Is(err, models.ErrBasketNotFound) {
				return errorResult(fmt.Sprintf("Basket %s not found", id)), nil
			}
			logger.Error().Err(err).Str("id", id).Msg("Get basket failed")
			return errorResult(fmt.Sprintf("Error loading basket: %v", err)), nil
		}
		return textResult(formatBasketDetail(*v, currency)), nil
	}
}

func handlePortfolioSummary(baskets interfaces.BasketService, currency string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, err := baskets.GetPortfolioSummary(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Portfolio summary failed")
			return errorResult(fmt.Sprintf("Error building summary: %v", err)), nil
		}
		return textResult(formatPortfolioSummary(*summary, currency)), nil
	}
}

func handleAllocateBasket(baskets interfaces.BasketService, currency string, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount, err := request.RequireFloat("amount")
		if err != nil || !(amount > 0) {
			return errorResult("Error: amount must be a positive number"), nil
		}
		symbols := request.GetStringSlice("symbols", nil)
		if len(symbols) == 0 {
			return errorResult("Error: symbols parameter is required"), nil
		}

		plan, err := baskets.PreviewAllocation(ctx, amount, symbols)
		if err != nil {
			logger.Warn().Err(err).Strs("symbols", symbols).Msg("Allocation preview failed")
			return errorResult(fmt.Sprintf("Allocation error: %v", err)), nil
		}
		return textResult(formatAllocationPlan(*plan, currency)), nil
	}
}

func handleComputeXIRR() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		arg, ok := request.GetArguments()["cashflows"]
		if !ok {
			return errorResult("Error: cashflows parameter is required"), nil
		}
		raw, err := json.Marshal(arg)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: invalid cashflows: %v", err)), nil
		}

		var in []models.CashFlowInput
		if err := unmarshalArrayParam(raw, &in); err != nil {
			return errorResult(fmt.Sprintf("Error: invalid cashflows: %v", err)), nil
		}
		flows, err := models.ParseCashFlows(in)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		xirr := portfolio.ComputeXIRR(flows)
		return textResult(fmt.Sprintf("XIRR: %s over %d cashflows", models.FormatSignedPercent(xirr), len(flows))), nil
	}
}

// unmarshalArrayParam handles MCP array parameters whose items arrive either
// as JSON objects or as string-encoded JSON objects, which some MCP proxies send.
func unmarshalArrayParam(raw json.RawMessage, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err == nil {
		return nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return json.Unmarshal(raw, dest) // return the original error
	}

	parts := make([]json.RawMessage, len(items))
	for i, s := range items {
		parts[i] = json.RawMessage(s)
	}
	rebuilt, err := json.Marshal(parts)
	if err != nil {
		return err
	}
	return json.Unmarshal(rebuilt, dest)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
