package portfolio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/sipfolio/internal/models"
)

// RenderContributionsChart renders a PNG line chart of cumulative invested
// amount against cumulative recorded value, one point per distinct record
// date. Two series: Recorded Value (blue solid) and Invested (gray dashed).
// Returns raw PNG bytes.
func (s *Service) RenderContributionsChart(records []models.HistoryRecord) ([]byte, error) {
	xValues, investedY, valueY := contributionPoints(records)
	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(xValues))
	}

	valueSeries := chart.TimeSeries{
		Name: "Recorded Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("3d8bff"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	investedSeries := chart.TimeSeries{
		Name: "Invested",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"),
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: investedY,
	}

	graph := chart.Chart{
		Title:  "Portfolio Contributions",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			investedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// contributionPoints folds records into cumulative series. Records are
// assumed date-sorted, the order the loader returns them in.
func contributionPoints(records []models.HistoryRecord) ([]time.Time, []float64, []float64) {
	var (
		xValues   []time.Time
		investedY []float64
		valueY    []float64
		invested  float64
		value     float64
	)

	for _, record := range records {
		invested += record.Invested.InexactFloat64()
		value += record.HistoricalValue.InexactFloat64()
		if n := len(xValues); n > 0 && xValues[n-1].Equal(record.Date) {
			investedY[n-1] = invested
			valueY[n-1] = value
			continue
		}
		xValues = append(xValues, record.Date)
		investedY = append(investedY, invested)
		valueY = append(valueY, value)
	}

	return xValues, investedY, valueY
}
