// Package quote resolves last traded prices for basket symbols
package quote

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/interfaces"
	"github.com/bobmcallan/basket/internal/models"
)

// maxConcurrentFetches bounds parallel quote requests in GetLTPs. The client's
// rate limiter still applies on top of this.
const maxConcurrentFetches = 4

type cachedPrice struct {
	price     float64
	fetchedAt time.Time
}

// Service implements interfaces.QuoteService over the EODHD real-time endpoint.
type Service struct {
	eodhd    interfaces.EODHDClient
	exchange string
	ttl      time.Duration
	logger   *common.Logger
	now      func() time.Time // injectable clock for testing

	mu    sync.Mutex
	cache map[string]cachedPrice
}

// NewService creates a quote service. exchange is the suffix appended to bare
// symbols ("NSE" turns RELIANCE into RELIANCE.NSE); ttl of zero disables caching.
func NewService(eodhd interfaces.EODHDClient, exchange string, ttl time.Duration, logger *common.Logger) *Service {
	return &Service{
		eodhd:    eodhd,
		exchange: strings.ToUpper(strings.TrimSpace(exchange)),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		cache:    make(map[string]cachedPrice),
	}
}

// Ticker maps a basket symbol to an exchange ticker. Symbols that already
// carry an exchange suffix are passed through.
func (s *Service) Ticker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || s.exchange == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + "." + s.exchange
}

// GetLTP returns the last traded price for symbol. When the exchange reports
// no trade for the session the previous close is used.
func (s *Service) GetLTP(ctx context.Context, symbol string) (float64, error) {
	ticker := s.Ticker(symbol)
	if ticker == "" {
		return 0, fmt.Errorf("%w: empty symbol", models.ErrPriceUnavailable)
	}

	if price, ok := s.cached(ticker); ok {
		return price, nil
	}

	quote, err := s.eodhd.GetRealTimeQuote(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", models.ErrPriceUnavailable, ticker, err)
	}
	if quote == nil {
		return 0, fmt.Errorf("%w: %s: empty quote", models.ErrPriceUnavailable, ticker)
	}

	price := quote.Close
	if !usable(price) && usable(quote.PreviousClose) {
		s.logger.Debug().Str("ticker", ticker).Float64("previous_close", quote.PreviousClose).Msg("No trade price, using previous close")
		price = quote.PreviousClose
	}
	if !usable(price) {
		return 0, fmt.Errorf("%w: %s: no positive price", models.ErrPriceUnavailable, ticker)
	}

	s.store(ticker, price)
	return price, nil
}

// GetLTPs fetches prices for symbols concurrently. The result is keyed by the
// symbol as given; symbols without a usable price are logged and omitted.
func (s *Service) GetLTPs(ctx context.Context, symbols []string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		g.Go(func() error {
			price, err := s.GetLTP(gctx, symbol)
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("LTP fetch failed")
				return nil
			}
			mu.Lock()
			out[symbol] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Service) cached(ticker string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[ticker]
	if !ok || !common.IsFresh(entry.fetchedAt, s.ttl, s.now()) {
		return 0, false
	}
	return entry.price, true
}

func (s *Service) store(ticker string, price float64) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[ticker] = cachedPrice{price: price, fetchedAt: s.now()}
	s.mu.Unlock()
}

func usable(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}
