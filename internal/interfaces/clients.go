// Package interfaces defines service contracts for the basket server
package interfaces

import (
	"context"

	"github.com/bobmcallan/basket/internal/models"
)

// EODHDClient provides access to the EODHD API
type EODHDClient interface {
	// GetRealTimeQuote retrieves a live (delayed) quote for an exchange ticker such as "RELIANCE.NSE"
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)
}
