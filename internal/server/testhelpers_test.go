package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/basket/internal/app"
	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/interfaces"
	"github.com/bobmcallan/basket/internal/models"
	"github.com/bobmcallan/basket/internal/services/feed"
)

// mockBaskets is a BasketService whose behaviour is set per test via function fields.
type mockBaskets struct {
	preview   func(amount float64, symbols []string) (*models.AllocationPlan, error)
	create    func(req models.CreateBasketRequest) (*models.Basket, error)
	valuation func(id string) (*models.BasketValuation, error)
	list      func() ([]models.BasketValuation, error)
	refresh   func(id string) (*models.BasketValuation, error)
	exit      func(id string) (*models.BasketValuation, error)
	del       func(id string) error
	summary   func() (*models.PortfolioSummary, error)
	chart     func(id string) ([]byte, error)
}

var _ interfaces.BasketService = (*mockBaskets)(nil)

func (m *mockBaskets) PreviewAllocation(_ context.Context, amount float64, symbols []string) (*models.AllocationPlan, error) {
	return m.preview(amount, symbols)
}

func (m *mockBaskets) CreateBasket(_ context.Context, req models.CreateBasketRequest) (*models.Basket, error) {
	return m.create(req)
}

func (m *mockBaskets) ListBaskets(_ context.Context) ([]*models.Basket, error) {
	return nil, nil
}

func (m *mockBaskets) GetBasket(_ context.Context, id string) (*models.Basket, error) {
	return nil, models.ErrBasketNotFound
}

func (m *mockBaskets) GetBasketValuation(_ context.Context, id string) (*models.BasketValuation, error) {
	return m.valuation(id)
}

func (m *mockBaskets) ListBasketValuations(_ context.Context) ([]models.BasketValuation, error) {
	return m.list()
}

func (m *mockBaskets) RefreshPrices(_ context.Context, id string) (*models.BasketValuation, error) {
	return m.refresh(id)
}

func (m *mockBaskets) RefreshAll(_ context.Context) (int, error) {
	return 0, nil
}

func (m *mockBaskets) ExitBasket(_ context.Context, id string) (*models.BasketValuation, error) {
	return m.exit(id)
}

func (m *mockBaskets) DeleteBasket(_ context.Context, id string) error {
	return m.del(id)
}

func (m *mockBaskets) GetPortfolioSummary(_ context.Context) (*models.PortfolioSummary, error) {
	return m.summary()
}

func (m *mockBaskets) RenderBasketChart(_ context.Context, id string) ([]byte, error) {
	return m.chart(id)
}

// newTestServer builds a Server around mock services and a running feed hub.
func newTestServer(t *testing.T, baskets *mockBaskets) (*Server, *feed.Hub) {
	t.Helper()

	logger := common.NewSilentLogger()
	hub := feed.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	a := &app.App{
		Config:        common.NewDefaultConfig(),
		Logger:        logger,
		BasketService: baskets,
		Feed:          hub,
		MCPServer:     mcpserver.NewMCPServer("basket-test", "test", mcpserver.WithToolCapabilities(true)),
	}
	return NewServer(a), hub
}

// do sends a request through the full middleware stack.
func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}
