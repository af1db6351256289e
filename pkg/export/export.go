// Package export renders plan grids for downstream consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
)

// DateLayout is the day format used in every export.
const DateLayout = "02/01/2006"

// Legend maps each tariff band to the fill color of its cells.
var Legend = map[model.TariffBand]string{
	model.BandLow:  "92D050",
	model.BandMid:  "FFC000",
	model.BandPeak: "FF0000",
}

// Format names accepted by Write.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

type document struct {
	RunID   string                      `json:"run_id"`
	Year    int                         `json:"year"`
	Target  int                         `json:"target"`
	Summary plan.Summary                `json:"summary"`
	Legend  map[model.TariffBand]string `json:"legend"`
	Rows    [][]model.Cell              `json:"rows"`
}

// WriteJSON writes the result with its grid and the band legend to w.
func WriteJSON(w io.Writer, res *plan.Result) error {
	doc := document{
		RunID:   res.RunID,
		Year:    res.Year,
		Target:  res.Target,
		Summary: res.Summary,
		Legend:  Legend,
	}
	if res.Grid != nil {
		doc.Rows = res.Grid.Rows
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteCSV writes one line per hour of the grid with the state of both
// facilities.
func WriteCSV(w io.Writer, g *model.Grid) error {
	cw := csv.NewWriter(w)
	header := []string{"date", "weekday", "hour", "season", "day_type", "band", "total_production", "total_cost"}
	for _, side := range model.Sides {
		for _, col := range []string{"pumps", "production", "se", "tariff_cost", "energy_limit", "shutdown", "cost"} {
			header = append(header, side.String()+"_"+col)
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for d := 0; d < g.Days(); d++ {
		for _, c := range g.Row(d) {
			rec := []string{
				c.Date.Format(DateLayout),
				c.Date.Weekday().String(),
				strconv.Itoa(c.Hour),
				string(c.Season),
				string(c.DayType),
				c.Band.String(),
				strconv.Itoa(c.Production()),
				formatFloat(c.TotalCost),
			}
			for _, side := range model.Sides {
				f := c.Facility(side)
				rec = append(rec,
					strconv.Itoa(f.Pumps),
					strconv.Itoa(f.Production),
					formatFloat(f.SpecificEnergy),
					formatFloat(f.TariffCost),
					strconv.Itoa(f.EnergyLimit),
					strconv.FormatBool(f.Shutdown),
					formatFloat(f.Cost),
				)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write renders res in the named format.
func Write(w io.Writer, format string, res *plan.Result) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatCSV:
		if res.Grid == nil {
			return fmt.Errorf("result %s has no grid", res.RunID)
		}
		return WriteCSV(w, res.Grid)
	case FormatHTML:
		if res.Grid == nil {
			return fmt.Errorf("result %s has no grid", res.RunID)
		}
		return WriteChart(w, res)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
