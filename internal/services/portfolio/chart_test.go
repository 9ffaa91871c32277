package portfolio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/basket/internal/models"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderBasketChart(t *testing.T) {
	b := &models.Basket{
		ID:   "b1",
		Name: "Banks",
		Stocks: []models.Stock{
			{Symbol: "HDFCBANK", Quantity: 5, BuyPrice: 1500, LTP: ptr(1650)},
			{Symbol: "ICICIBANK", Quantity: 8, BuyPrice: 1000, LTP: ptr(950)},
			{Symbol: "SBIN", Quantity: 10, BuyPrice: 800},
		},
	}

	png, err := RenderBasketChart(ValueBasket(b), "₹")

	require.NoError(t, err)
	require.Greater(t, len(png), len(pngMagic))
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output should be a PNG")
}

func TestRenderBasketChart_NoPositions(t *testing.T) {
	_, err := RenderBasketChart(ValueBasket(&models.Basket{ID: "empty"}), "₹")

	assert.Error(t, err)
}
