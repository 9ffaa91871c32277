// Package basket manages stock baskets: creation from an investment amount,
// price refresh, exit and valuation.
package basket

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/interfaces"
	"github.com/bobmcallan/basket/internal/models"
	"github.com/bobmcallan/basket/internal/services/portfolio"
)

// Service implements interfaces.BasketService.
type Service struct {
	store          interfaces.BasketStore
	quotes         interfaces.QuoteService
	feed           interfaces.FeedPublisher
	logger         *common.Logger
	currencySymbol string
	now            func() time.Time // injectable clock for testing

	// writeMu serialises read-modify-write cycles on stored baskets
	writeMu sync.Mutex
}

// NewService creates a basket service. feed may be nil.
func NewService(store interfaces.BasketStore, quotes interfaces.QuoteService, feed interfaces.FeedPublisher, currencySymbol string, logger *common.Logger) *Service {
	return &Service{
		store:          store,
		quotes:         quotes,
		feed:           feed,
		logger:         logger,
		currencySymbol: currencySymbol,
		now:            time.Now,
	}
}

// normaliseSymbols upper-cases and trims symbols, rejecting blanks and duplicates.
func normaliseSymbols(symbols []string) ([]string, error) {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, raw := range symbols {
		s := strings.ToUpper(strings.TrimSpace(raw))
		if s == "" {
			return nil, fmt.Errorf("%w: empty symbol", models.ErrInvalidBasket)
		}
		if seen[s] {
			return nil, fmt.Errorf("%w: duplicate symbol %s", models.ErrInvalidBasket, s)
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// PreviewAllocation prices symbols and splits amount across them without saving anything.
func (s *Service) PreviewAllocation(ctx context.Context, amount float64, symbols []string) (*models.AllocationPlan, error) {
	if err := models.ValidateAllocation(amount, len(symbols)); err != nil {
		return nil, err
	}
	syms, err := normaliseSymbols(symbols)
	if err != nil {
		return nil, err
	}
	if len(syms) == 0 {
		return nil, fmt.Errorf("%w: at least one symbol is required", models.ErrInvalidBasket)
	}

	candidates, err := s.priceCandidates(ctx, syms, nil)
	if err != nil {
		return nil, err
	}
	plan := portfolio.PlanAllocation(amount, candidates)
	return &plan, nil
}

// priceCandidates fetches live prices for every symbol; any missing price fails the whole request.
func (s *Service) priceCandidates(ctx context.Context, symbols []string, names map[string]string) ([]models.AllocationCandidate, error) {
	prices := s.quotes.GetLTPs(ctx, symbols)

	var missing []string
	candidates := make([]models.AllocationCandidate, 0, len(symbols))
	for _, sym := range symbols {
		price, ok := prices[sym]
		if !ok {
			missing = append(missing, sym)
			continue
		}
		candidates = append(candidates, models.AllocationCandidate{Symbol: sym, Name: names[sym], Price: price})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrPriceUnavailable, strings.Join(missing, ", "))
	}
	return candidates, nil
}

// CreateBasket validates and stores a new basket. When req.Amount is positive
// and no stock carries a quantity, quantities and buy prices come from the
// allocator on live prices; stocks that receive no shares are dropped.
func (s *Service) CreateBasket(ctx context.Context, req models.CreateBasketRequest) (*models.Basket, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidBasket)
	}
	if len(req.Stocks) == 0 {
		return nil, fmt.Errorf("%w: at least one stock is required", models.ErrInvalidBasket)
	}

	symbols := make([]string, len(req.Stocks))
	for i, st := range req.Stocks {
		symbols[i] = st.Symbol
	}
	syms, err := normaliseSymbols(symbols)
	if err != nil {
		return nil, err
	}

	stocks := make([]models.Stock, len(req.Stocks))
	hasQuantities := false
	for i, st := range req.Stocks {
		stocks[i] = models.Stock{
			Symbol:   syms[i],
			Name:     strings.TrimSpace(st.Name),
			Quantity: st.Quantity,
			BuyPrice: st.Buy(),
		}
		if st.HasLTP() {
			stocks[i].LTP = models.Float64Ptr(*st.LTP)
		}
		if st.Quantity > 0 {
			hasQuantities = true
		}
	}

	if req.Amount > 0 && !hasQuantities {
		if err := models.ValidateAllocation(req.Amount, len(stocks)); err != nil {
			return nil, err
		}
		stocks, err = s.allocateStocks(ctx, req.Amount, stocks)
		if err != nil {
			return nil, err
		}
	} else {
		for _, st := range stocks {
			if st.Quantity <= 0 || !(st.BuyPrice > 0) {
				return nil, fmt.Errorf("%w: %s needs a positive quantity and buy price", models.ErrInvalidBasket, st.Symbol)
			}
		}
	}

	if len(stocks) == 0 {
		return nil, fmt.Errorf("%w: amount %.2f buys no whole shares", models.ErrInvalidBasket, req.Amount)
	}

	now := s.now()
	basket := &models.Basket{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Stocks:    stocks,
	}

	if err := s.store.SaveBasket(ctx, basket); err != nil {
		return nil, fmt.Errorf("failed to save basket: %w", err)
	}

	s.logger.Info().
		Str("id", basket.ID).
		Str("name", basket.Name).
		Int("stocks", len(basket.Stocks)).
		Msg("Basket created")

	s.publishBasket(models.FeedBasketCreated, basket)
	return basket, nil
}

func (s *Service) allocateStocks(ctx context.Context, amount float64, stocks []models.Stock) ([]models.Stock, error) {
	symbols := make([]string, len(stocks))
	names := make(map[string]string, len(stocks))
	for i, st := range stocks {
		symbols[i] = st.Symbol
		names[st.Symbol] = st.Name
	}

	candidates, err := s.priceCandidates(ctx, symbols, names)
	if err != nil {
		return nil, err
	}

	out := make([]models.Stock, 0, len(stocks))
	for _, a := range portfolio.Allocate(amount, candidates) {
		if a.Quantity <= 0 {
			s.logger.Info().Str("symbol", a.Symbol).Float64("price", a.Price).Msg("Stock dropped, no whole share affordable")
			continue
		}
		out = append(out, models.Stock{
			Symbol:   a.Symbol,
			Name:     a.Name,
			Quantity: a.Quantity,
			BuyPrice: a.Price,
			LTP:      models.Float64Ptr(a.Price),
		})
	}
	return out, nil
}

func (s *Service) ListBaskets(ctx context.Context) ([]*models.Basket, error) {
	return s.store.ListBaskets(ctx)
}

func (s *Service) GetBasket(ctx context.Context, id string) (*models.Basket, error) {
	return s.store.GetBasket(ctx, id)
}

func (s *Service) GetBasketValuation(ctx context.Context, id string) (*models.BasketValuation, error) {
	basket, err := s.store.GetBasket(ctx, id)
	if err != nil {
		return nil, err
	}
	v := portfolio.ValueBasket(basket)
	return &v, nil
}

// ListBasketValuations values every basket, oldest first.
func (s *Service) ListBasketValuations(ctx context.Context) ([]models.BasketValuation, error) {
	baskets, err := s.store.ListBaskets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.BasketValuation, len(baskets))
	for i, b := range baskets {
		out[i] = portfolio.ValueBasket(b)
	}
	return out, nil
}

// RefreshPrices fetches and stores LTPs for the basket's open positions.
// Symbols whose price cannot be fetched keep their previous LTP.
func (s *Service) RefreshPrices(ctx context.Context, id string) (*models.BasketValuation, error) {
	s.writeMu.Lock()
	basket, updated, err := s.refreshLocked(ctx, id)
	s.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	v := portfolio.ValueBasket(basket)
	s.logger.Debug().Str("id", id).Int("updated", updated).Msg("Basket prices refreshed")
	s.publish(models.FeedEvent{Type: models.FeedBasketRefreshed, BasketID: id, Valuation: &v})
	return &v, nil
}

func (s *Service) refreshLocked(ctx context.Context, id string) (*models.Basket, int, error) {
	basket, err := s.store.GetBasket(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	var open []string
	for _, st := range basket.Stocks {
		if !st.IsExited() {
			open = append(open, st.Symbol)
		}
	}
	if len(open) == 0 {
		return basket, 0, nil
	}

	prices := s.quotes.GetLTPs(ctx, open)
	updated := 0
	for i := range basket.Stocks {
		st := &basket.Stocks[i]
		if st.IsExited() {
			continue
		}
		if price, ok := prices[st.Symbol]; ok {
			st.LTP = models.Float64Ptr(price)
			updated++
		}
	}
	if updated == 0 {
		return basket, 0, nil
	}

	if err := s.store.SaveBasket(ctx, basket); err != nil {
		return nil, 0, fmt.Errorf("failed to save refreshed prices: %w", err)
	}
	return basket, updated, nil
}

// RefreshAll refreshes every basket that still has open positions and
// publishes the updated portfolio summary. A failing basket is logged and skipped.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	baskets, err := s.store.ListBaskets(ctx)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, b := range baskets {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if b.FullyExited() || len(b.Stocks) == 0 {
			continue
		}
		if _, err := s.RefreshPrices(ctx, b.ID); err != nil {
			s.logger.Warn().Err(err).Str("id", b.ID).Msg("Basket refresh failed")
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		if summary, err := s.GetPortfolioSummary(ctx); err == nil {
			s.publish(models.FeedEvent{Type: models.FeedPortfolio, Summary: summary})
		}
	}
	return refreshed, nil
}

// ExitBasket sells every open position. The sell price is a fresh LTP when one
// can be fetched, else the stored LTP, else the buy price; the sell date is today.
// Positions already exited keep their original exit.
func (s *Service) ExitBasket(ctx context.Context, id string) (*models.BasketValuation, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	basket, err := s.store.GetBasket(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(basket.Stocks) == 0 {
		return nil, fmt.Errorf("%w: basket %s has no stocks", models.ErrInvalidBasket, id)
	}
	if basket.FullyExited() {
		return nil, fmt.Errorf("%w: %s", models.ErrBasketExited, id)
	}

	var open []string
	for _, st := range basket.Stocks {
		if !st.IsExited() {
			open = append(open, st.Symbol)
		}
	}
	fresh := s.quotes.GetLTPs(ctx, open)
	today := s.now().Format(models.DateLayout)

	for i := range basket.Stocks {
		st := &basket.Stocks[i]
		if st.IsExited() {
			continue
		}
		price, ok := fresh[st.Symbol]
		switch {
		case ok:
			st.LTP = models.Float64Ptr(price)
		case st.HasLTP():
			price = *st.LTP
		default:
			price = st.Buy()
		}
		st.SellPrice = models.Float64Ptr(price)
		st.SellDate = today
	}

	if err := s.store.SaveBasket(ctx, basket); err != nil {
		return nil, fmt.Errorf("failed to save exited basket: %w", err)
	}

	v := portfolio.ValueBasket(basket)
	s.logger.Info().
		Str("id", id).
		Float64("proceeds", v.CurrentValue).
		Float64("return_pct", v.ReturnPct).
		Msg("Basket exited")

	s.publish(models.FeedEvent{Type: models.FeedBasketExited, BasketID: id, Valuation: &v})
	return &v, nil
}

func (s *Service) DeleteBasket(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.store.DeleteBasket(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("id", id).Msg("Basket deleted")
	s.publish(models.FeedEvent{Type: models.FeedBasketDeleted, BasketID: id})
	return nil
}

func (s *Service) GetPortfolioSummary(ctx context.Context) (*models.PortfolioSummary, error) {
	baskets, err := s.store.ListBaskets(ctx)
	if err != nil {
		return nil, err
	}
	summary := portfolio.AggregatePortfolio(baskets, s.now())
	sort.SliceStable(summary.CashFlows, func(i, j int) bool {
		return summary.CashFlows[i].Date.Before(summary.CashFlows[j].Date)
	})
	return &summary, nil
}

func (s *Service) RenderBasketChart(ctx context.Context, id string) ([]byte, error) {
	v, err := s.GetBasketValuation(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(v.Positions) == 0 {
		return nil, fmt.Errorf("%w: basket %s has no stocks", models.ErrInvalidBasket, id)
	}
	return portfolio.RenderBasketChart(*v, s.currencySymbol)
}

func (s *Service) publishBasket(t models.FeedEventType, basket *models.Basket) {
	v := portfolio.ValueBasket(basket)
	s.publish(models.FeedEvent{Type: t, BasketID: basket.ID, Valuation: &v})
}

func (s *Service) publish(event models.FeedEvent) {
	if s.feed == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.feed.Publish(event)
}

var _ interfaces.BasketService = (*Service)(nil)
