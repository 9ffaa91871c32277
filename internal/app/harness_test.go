package app

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/basket/internal/common"
	"github.com/bobmcallan/basket/internal/models"
)

// mockBasketService returns canned values. Unset fields yield errors.
type mockBasketService struct {
	valuations []models.BasketValuation
	summary    *models.PortfolioSummary
	plan       *models.AllocationPlan
	err        error

	refreshed    []string
	refreshAllN  int
	previewCalls [][]string
}

func (m *mockBasketService) find(id string) (*models.BasketValuation, error) {
	for i := range m.valuations {
		if m.valuations[i].ID == id {
			v := m.valuations[i]
			return &v, nil
		}
	}
	return nil, models.ErrBasketNotFound
}

func (m *mockBasketService) PreviewAllocation(_ context.Context, amount float64, symbols []string) (*models.AllocationPlan, error) {
	m.previewCalls = append(m.previewCalls, symbols)
	if m.err != nil {
		return nil, m.err
	}
	return m.plan, nil
}

func (m *mockBasketService) CreateBasket(_ context.Context, req models.CreateBasketRequest) (*models.Basket, error) {
	return nil, m.err
}

func (m *mockBasketService) ListBaskets(_ context.Context) ([]*models.Basket, error) {
	return nil, m.err
}

func (m *mockBasketService) GetBasket(_ context.Context, id string) (*models.Basket, error) {
	return nil, models.ErrBasketNotFound
}

func (m *mockBasketService) GetBasketValuation(_ context.Context, id string) (*models.BasketValuation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.find(id)
}

func (m *mockBasketService) ListBasketValuations(_ context.Context) ([]models.BasketValuation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.valuations, nil
}

func (m *mockBasketService) RefreshPrices(_ context.Context, id string) (*models.BasketValuation, error) {
	m.refreshed = append(m.refreshed, id)
	if m.err != nil {
		return nil, m.err
	}
	return m.find(id)
}

func (m *mockBasketService) RefreshAll(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.refreshAllN, nil
}

func (m *mockBasketService) ExitBasket(_ context.Context, id string) (*models.BasketValuation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.find(id)
}

func (m *mockBasketService) DeleteBasket(_ context.Context, id string) error {
	return m.err
}

func (m *mockBasketService) GetPortfolioSummary(_ context.Context) (*models.PortfolioSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summary, nil
}

func (m *mockBasketService) RenderBasketChart(_ context.Context, id string) ([]byte, error) {
	return nil, m.err
}

// testHarness provides an in-process MCP client connected to a server
// whose tools run against a mock basket service.
type testHarness struct {
	t         *testing.T
	client    *client.Client
	mcpServer *server.MCPServer
	baskets   *mockBasketService
	logger    *common.Logger
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := common.NewSilentLogger()
	mock := &mockBasketService{}

	mcpServer := server.NewMCPServer(
		"basket-test",
		"test",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetVersionTool(), handleGetVersion())
	mcpServer.AddTool(createListBasketsTool(), handleListBaskets(mock, "₹", logger))
	mcpServer.AddTool(createGetBasketTool(), handleGetBasket(mock, "₹", logger))
	mcpServer.AddTool(createPortfolioSummaryTool(), handlePortfolioSummary(mock, "₹", logger))
	mcpServer.AddTool(createAllocateBasketTool(), handleAllocateBasket(mock, "₹", logger))
	mcpServer.AddTool(createComputeXIRRTool(), handleComputeXIRR())

	c, err := newInProcessClient(t, mcpServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}

	h := &testHarness{
		t:         t,
		client:    c,
		mcpServer: mcpServer,
		baskets:   mock,
		logger:    logger,
	}
	t.Cleanup(h.close)
	return h
}

// callTool invokes an MCP tool by name with the given arguments.
func (h *testHarness) callTool(name string, args map[string]any) (*mcp.CallToolResult, error) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h.client.CallTool(ctx, req)
}

// getTextContent extracts text from a content block at the given index.
func (h *testHarness) getTextContent(result *mcp.CallToolResult, index int) string {
	h.t.Helper()
	if index >= len(result.Content) {
		h.t.Fatalf("Content index %d out of range (have %d blocks)", index, len(result.Content))
	}
	tc, ok := result.Content[index].(mcp.TextContent)
	if !ok {
		h.t.Fatalf("Content[%d] is %T, not TextContent", index, result.Content[index])
	}
	return tc.Text
}

func (h *testHarness) close() {
	if h.client != nil {
		h.client.Close()
	}
}
