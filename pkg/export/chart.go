package export

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
)

// FormatHTML renders the daily charts page.
const FormatHTML = "html"

// dailyBands returns the production of every day split by tariff band, and
// the daily cost.
func dailyBands(g *model.Grid) (map[model.TariffBand][]int, []float64) {
	prod := make(map[model.TariffBand][]int, len(model.Bands))
	for _, b := range model.Bands {
		prod[b] = make([]int, g.Days())
	}
	cost := make([]float64, g.Days())
	for d := 0; d < g.Days(); d++ {
		for _, c := range g.Row(d) {
			prod[c.Band][d] += c.Production()
			cost[d] += c.TotalCost
		}
	}
	return prod, cost
}

// WriteChart writes an HTML page with the daily production stacked by
// tariff band and the daily cost of the run.
func WriteChart(w io.Writer, res *plan.Result) error {
	g := res.Grid
	days := make([]string, g.Days())
	for d := range days {
		days[d] = g.Row(d)[0].Date.Format(DateLayout)
	}
	prod, cost := dailyBands(g)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Daily production", Subtitle: res.RunID}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m3"}),
	)
	bar.SetXAxis(days)
	for _, b := range model.Bands {
		data := make([]opts.BarData, len(prod[b]))
		for d, v := range prod[b] {
			data[d] = opts.BarData{Value: v}
		}
		bar.AddSeries(b.String(), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "production"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "#" + Legend[b]}))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Daily cost"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cost"}),
	)
	data := make([]opts.LineData, len(cost))
	for d, v := range cost {
		data[d] = opts.LineData{Value: math.Round(v*100) / 100}
	}
	line.SetXAxis(days).AddSeries("cost", data)

	page := components.NewPage().SetPageTitle("Plan " + res.RunID)
	page.AddCharts(bar, line)
	return page.Render(w)
}
