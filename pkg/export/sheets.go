package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/pumpplan/core/model"
)

// Sheet is one metric of the grid laid out as a days × 24 hours matrix.
type Sheet struct {
	Name string
	Data *mat.Dense
	// Additive sheets get a daily total column.
	Additive bool
	format   func(float64) string
}

type metric struct {
	name     string
	additive bool
	value    func(c *model.Cell) float64
	format   func(float64) string
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func bandName(v float64) string { return model.TariffBand(int(v)).String() }

func cellMetrics() []metric {
	ms := []metric{
		{name: "taoz", value: func(c *model.Cell) float64 { return float64(c.Band) }, format: bandName},
		{name: "price", additive: true, value: func(c *model.Cell) float64 { return c.TotalCost }},
		{name: "total_production_amount", additive: true, value: func(c *model.Cell) float64 { return float64(c.Production()) }},
		{name: "total_energy_consumption", additive: true, value: func(c *model.Cell) float64 { return c.Energy() }},
	}
	for _, side := range model.Sides {
		f := func(c *model.Cell) *model.FacilityState { return c.Facility(side) }
		prefix := side.String() + "_"
		ms = append(ms,
			metric{name: prefix + "production_amount", additive: true, value: func(c *model.Cell) float64 { return float64(f(c).Production) }},
			metric{name: prefix + "taoz_cost", value: func(c *model.Cell) float64 { return f(c).TariffCost }},
			metric{name: prefix + "secondary_taoz_cost", value: func(c *model.Cell) float64 { return f(c).SecondaryTariffCost }},
			metric{name: prefix + "se", value: func(c *model.Cell) float64 { return f(c).SpecificEnergy }},
			metric{name: prefix + "num_of_pumps", value: func(c *model.Cell) float64 { return float64(f(c).Pumps) }},
			metric{name: prefix + "kwh_energy_limit", value: func(c *model.Cell) float64 { return float64(f(c).EnergyLimit) }},
			metric{name: prefix + "shut_down", value: func(c *model.Cell) float64 { return boolValue(f(c).Shutdown) }},
			metric{name: prefix + "production_price", additive: true, value: func(c *model.Cell) float64 { return f(c).Cost }},
		)
	}
	return ms
}

// Sheets returns every metric sheet of g in a fixed order.
func Sheets(g *model.Grid) []Sheet {
	if g.Days() == 0 {
		return nil
	}
	ms := cellMetrics()
	out := make([]Sheet, 0, len(ms))
	for _, m := range ms {
		d := mat.NewDense(g.Days(), model.HoursPerDay, nil)
		for day := 0; day < g.Days(); day++ {
			row := g.Row(day)
			for h := range row {
				d.Set(day, h, m.value(&row[h]))
			}
		}
		format := m.format
		if format == nil {
			format = formatFloat
		}
		out = append(out, Sheet{Name: m.name, Data: d, Additive: m.additive, format: format})
	}
	return out
}

// DailyTotals returns the sum of each row of the sheet.
func (s Sheet) DailyTotals() *mat.VecDense {
	_, c := s.Data.Dims()
	ones := make([]float64, c)
	for i := range ones {
		ones[i] = 1
	}
	var v mat.VecDense
	v.MulVec(s.Data, mat.NewVecDense(c, ones))
	return &v
}

// Total returns the sum of every value of the sheet.
func (s Sheet) Total() float64 { return mat.Sum(s.Data) }

// WriteSheet writes the sheet as a CSV matrix: one row per day with the
// date, the weekday and 24 hourly values, plus a total column when the
// metric is additive.
func WriteSheet(w io.Writer, g *model.Grid, s Sheet) error {
	rows, cols := s.Data.Dims()
	if rows != g.Days() {
		return fmt.Errorf("sheet %s has %d rows for %d days", s.Name, rows, g.Days())
	}
	format := s.format
	if format == nil {
		format = formatFloat
	}
	cw := csv.NewWriter(w)
	header := []string{"date", "weekday"}
	for h := 0; h < cols; h++ {
		header = append(header, strconv.Itoa(h))
	}
	var totals *mat.VecDense
	if s.Additive {
		header = append(header, "total")
		totals = s.DailyTotals()
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for d := 0; d < rows; d++ {
		date := g.Row(d)[0].Date
		rec := []string{date.Format(DateLayout), date.Weekday().String()}
		for h := 0; h < cols; h++ {
			rec = append(rec, format(s.Data.At(d, h)))
		}
		if totals != nil {
			rec = append(rec, formatFloat(totals.AtVec(d)))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSheets writes every sheet of g to dir as <name>.csv and returns the
// written paths.
func WriteSheets(dir string, g *model.Grid) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, s := range Sheets(g) {
		path := filepath.Join(dir, s.Name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		if err := WriteSheet(f, g, s); err != nil {
			_ = f.Close()
			return paths, fmt.Errorf("write %s: %w", s.Name, err)
		}
		if err := f.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
