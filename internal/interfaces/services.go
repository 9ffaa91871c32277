package interfaces

import (
	"context"

	"github.com/bobmcallan/basket/internal/models"
)

// QuoteService resolves last traded prices for bare symbols
type QuoteService interface {
	// GetLTP returns the last traded price for a symbol, or models.ErrPriceUnavailable
	GetLTP(ctx context.Context, symbol string) (float64, error)

	// GetLTPs fetches prices for many symbols; symbols without a price are omitted
	GetLTPs(ctx context.Context, symbols []string) map[string]float64
}

// BasketService manages baskets and their valuations
type BasketService interface {
	PreviewAllocation(ctx context.Context, amount float64, symbols []string) (*models.AllocationPlan, error)
	CreateBasket(ctx context.Context, req models.CreateBasketRequest) (*models.Basket, error)
	ListBaskets(ctx context.Context) ([]*models.Basket, error)
	GetBasket(ctx context.Context, id string) (*models.Basket, error)
	GetBasketValuation(ctx context.Context, id string) (*models.BasketValuation, error)
	ListBasketValuations(ctx context.Context) ([]models.BasketValuation, error)

	// RefreshPrices stores fresh LTPs for the basket's open positions
	RefreshPrices(ctx context.Context, id string) (*models.BasketValuation, error)

	// RefreshAll refreshes every basket with open positions, returning how many were updated
	RefreshAll(ctx context.Context) (int, error)

	// ExitBasket sells every open position at the best available price, dated today
	ExitBasket(ctx context.Context, id string) (*models.BasketValuation, error)

	DeleteBasket(ctx context.Context, id string) error
	GetPortfolioSummary(ctx context.Context) (*models.PortfolioSummary, error)

	// RenderBasketChart returns a PNG chart of the basket's positions
	RenderBasketChart(ctx context.Context, id string) ([]byte, error)
}

// FeedPublisher receives valuation change events
type FeedPublisher interface {
	Publish(event models.FeedEvent)
}
