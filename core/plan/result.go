package plan

import (
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/pumpplan/core/metrics"
	"github.com/kilianp07/pumpplan/core/model"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Summary aggregates a finished run.
type Summary struct {
	BaselineProduction int                          `json:"baseline_production"`
	FinalProduction    int                          `json:"final_production"`
	TotalCost          float64                      `json:"total_cost"`
	MaxCellCost        float64                      `json:"max_cell_cost"`
	TotalEnergy        float64                      `json:"total_energy"`
	BandProduction     map[model.TariffBand]int     `json:"band_production"`
	BandCost           map[model.TariffBand]float64 `json:"band_cost"`
	Advances           map[Pass]int                 `json:"advances"`
	Retreats           int                          `json:"retreats"`
	Remainders         int                          `json:"remainders"`
	SkippedDays        []time.Time                  `json:"skipped_days,omitempty"`
	ShutdownHours      int                          `json:"shutdown_hours"`
	Status             Status                       `json:"status"`
	FailedPass         Pass                         `json:"failed_pass,omitempty"`
	Error              string                       `json:"error,omitempty"`
	Duration           time.Duration                `json:"duration"`
}

func newSummary() *Summary {
	return &Summary{
		BandProduction: make(map[model.TariffBand]int, len(model.Bands)),
		BandCost:       make(map[model.TariffBand]float64, len(model.Bands)),
		Advances:       make(map[Pass]int, len(Passes)),
	}
}

func (s *Summary) finish(rc *RunContext, d time.Duration, err error) {
	costs := make([]float64, 0, rc.Grid.Days()*model.HoursPerDay)
	energy := make([]float64, 0, cap(costs))
	for _, b := range model.Bands {
		s.BandProduction[b] = 0
		s.BandCost[b] = 0
	}
	s.ShutdownHours = 0
	rc.Grid.Each(func(c *model.Cell) {
		costs = append(costs, c.TotalCost)
		energy = append(energy, c.Energy())
		s.BandProduction[c.Band] += c.Production()
		s.BandCost[c.Band] += c.TotalCost
		for _, f := range c.Facilities {
			if f.Shutdown {
				s.ShutdownHours++
			}
		}
	})
	s.FinalProduction = rc.YearTotal()
	s.TotalCost = floats.Sum(costs)
	s.TotalEnergy = floats.Sum(energy)
	if len(costs) > 0 {
		s.MaxCellCost = floats.Max(costs)
	}
	s.Duration = d
	s.Status = StatusSucceeded
	if err != nil {
		s.Status = StatusFailed
		s.Error = err.Error()
	}
}

// Result is the output of a run: the optimized grid and its summary. A
// failed run still carries the grid as far as the optimizer got.
type Result struct {
	RunID     string      `json:"run_id"`
	Year      int         `json:"year"`
	Target    int         `json:"target"`
	StartedAt time.Time   `json:"started_at"`
	Grid      *model.Grid `json:"grid,omitempty"`
	Summary   Summary     `json:"summary"`
}

func (r *Result) runEvent() metrics.RunEvent {
	ev := metrics.RunEvent{
		RunID:              r.RunID,
		Year:               r.Year,
		Target:             r.Target,
		BaselineProduction: r.Summary.BaselineProduction,
		FinalProduction:    r.Summary.FinalProduction,
		TotalCost:          r.Summary.TotalCost,
		BandProduction:     make(map[string]int, len(r.Summary.BandProduction)),
		BandCost:           make(map[string]float64, len(r.Summary.BandCost)),
		Status:             string(r.Summary.Status),
		FailedPass:         string(r.Summary.FailedPass),
		Duration:           r.Summary.Duration,
		Time:               r.StartedAt.Add(r.Summary.Duration),
	}
	for b, v := range r.Summary.BandProduction {
		ev.BandProduction[b.String()] = v
	}
	for b, v := range r.Summary.BandCost {
		ev.BandCost[b.String()] = v
	}
	return ev
}
