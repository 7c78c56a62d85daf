// Package charts renders report aggregates as PNG images using go-chart.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"nexo/internal/core"
	"nexo/internal/report"
)

var monthAbbrs = [12]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// RenderCategoryPie renders the expense split per category as a pie chart.
// Returns (nil, nil) when there is nothing to draw.
func RenderCategoryPie(totals []report.CategoryTotal) ([]byte, error) {
	if len(totals) == 0 {
		return nil, nil
	}

	var sum int64
	for _, t := range totals {
		sum += t.Total.Cents
	}

	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		percentage := float64(t.Total.Cents) / float64(sum) * 100
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%.1f%%)", t.Category, core.FormatBRL(t.Total.Cents), percentage),
			Value: t.Total.Reais(),
			Style: chart.Style{
				FillColor: drawing.ColorFromHex(core.CategoryColor(t.Category)),
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Gastos por categoria",
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category pie: %w", err)
	}
	return buffer.Bytes(), nil
}

// RenderWeekBar renders the trailing days expense series as a bar chart.
// The series is zero-filled upstream, so an all-zero week still renders.
func RenderWeekBar(days []report.DayTotal) ([]byte, error) {
	if len(days) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(days))
	for _, d := range days {
		bars = append(bars, chart.Value{
			Label: d.Label,
			Value: d.Total.Reais(),
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("A78BFA"),
				FillColor:   drawing.ColorFromHex("A78BFA"),
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Gastos dos últimos 7 dias",
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: reaisFormatter,
			// BarChart hides the axis when the whole series is zero unless a
			// range is forced.
			Range: barRange(bars),
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render week bar: %w", err)
	}
	return buffer.Bytes(), nil
}

// RenderHistoryBar renders monthly expense totals as a bar chart.
func RenderHistoryBar(months []report.MonthTotal) ([]byte, error) {
	if len(months) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(months))
	for _, m := range months {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s/%02d", monthAbbrs[int(m.Month)-1], m.Year%100),
			Value: m.Total.Reais(),
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("818CF8"),
				FillColor:   drawing.ColorFromHex("818CF8"),
			},
		})
	}

	graph := chart.BarChart{
		Title:    "Histórico mensal de gastos",
		Width:    800,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: reaisFormatter,
			Range:          barRange(bars),
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render history bar: %w", err)
	}
	return buffer.Bytes(), nil
}

func reaisFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("R$ %.0f", f)
	}
	return ""
}

func barRange(bars []chart.Value) chart.Range {
	maxValue := 0.0
	for _, b := range bars {
		if b.Value > maxValue {
			maxValue = b.Value
		}
	}
	if maxValue == 0 {
		maxValue = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1}
}
