package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Basket MCP server version and status. Use this to verify connectivity."),
	)
}

func createListBasketsTool() mcp.Tool {
	return mcp.NewTool("list_baskets",
		mcp.WithDescription("List all stock baskets with invested amount, current value and absolute/percentage return."),
	)
}

func createGetBasketTool() mcp.Tool {
	return mcp.NewTool("get_basket",
		mcp.WithDescription("Get one basket with a per-position breakdown: quantity, buy price, effective price, invested, current value and return."),
		mcp.WithString("basket_id",
			mcp.Required(),
			mcp.Description("Basket ID as returned by list_baskets"),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Fetch fresh last traded prices before valuing (default: false)"),
		),
	)
}

func createPortfolioSummaryTool() mcp.Tool {
	return mcp.NewTool("portfolio_summary",
		mcp.WithDescription("Aggregate all baskets: total invested, current value, return and annualised XIRR over every buy, exit and open position."),
	)
}

func createAllocateBasketTool() mcp.Tool {
	return mcp.NewTool("allocate_basket",
		mcp.WithDescription("Preview how an investment amount would split into whole shares across symbols at live prices. Nothing is saved."),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Amount to invest, in the display currency"),
		),
		mcp.WithArray("symbols",
			mcp.WithStringItems(),
			mcp.Required(),
			mcp.Description("Symbols to buy (e.g., ['RELIANCE', 'TCS']). Exchange suffix is optional."),
		),
	)
}

func createComputeXIRRTool() mcp.Tool {
	return mcp.NewTool("compute_xirr",
		mcp.WithDescription("Compute the annualised XIRR of dated cashflows. Negative amounts are investments, positive amounts are proceeds or current value."),
		mcp.WithArray("cashflows",
			mcp.Required(),
			mcp.Description(`Cashflows as objects: [{"amount": -1000, "date": "2024-01-01"}, {"amount": 1100, "date": "2025-01-01"}]`),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"amount": map[string]any{"type": "number"},
					"date":   map[string]any{"type": "string"},
				},
				"required": []string{"amount", "date"},
			}),
		),
	)
}
