package portfolio

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/basket/internal/models"
)

var directionColors = map[models.Direction]drawing.Color{
	models.DirectionPositive: drawing.ColorFromHex("16a34a"), // green-600
	models.DirectionNegative: drawing.ColorFromHex("ef4444"), // red-500
	models.DirectionZero:     drawing.ColorFromHex("6b7280"), // gray-500
}

// RenderBasketChart renders a PNG bar chart of each position's current value,
// coloured by the direction of its return. Returns raw PNG bytes.
func RenderBasketChart(v models.BasketValuation, currencySymbol string) ([]byte, error) {
	if len(v.Positions) == 0 {
		return nil, fmt.Errorf("basket %s has no positions to chart", v.ID)
	}

	bars := make([]chart.Value, 0, len(v.Positions))
	for _, p := range v.Positions {
		color := directionColors[p.Direction]
		bars = append(bars, chart.Value{
			Label: p.Symbol,
			Value: p.CurrentValue,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("%s  %s (%s)", v.Name, models.FormatAmount(currencySymbol, v.CurrentValue), models.FormatSignedPercent(v.ReturnPct)),
		Width:    900,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(val interface{}) string {
				if f, ok := val.(float64); ok {
					return models.FormatAmount(currencySymbol, f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
