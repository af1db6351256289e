package plan

import (
	"fmt"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
)

// RunContext owns the mutable state of one planning run: the grid, the
// reference tables and the running production totals per day, per bi-month
// window and per year. Totals are maintained incrementally by every mutation.
type RunContext struct {
	Grid   *model.Grid
	Tables *reference.Tables
	Config Config

	limits    [model.BioMonthCount + 1]reference.Limits
	dayTotals []int
	window    [model.BioMonthCount + 1]int
	year      int
	versions  []uint32
}

// NewRunContext wraps g for a run. Totals are computed from the grid as it is.
func NewRunContext(g *model.Grid, tables *reference.Tables, cfg Config) (*RunContext, error) {
	rc := &RunContext{
		Grid:      g,
		Tables:    tables,
		Config:    cfg,
		dayTotals: make([]int, g.Days()),
		versions:  make([]uint32, g.Days()*model.HoursPerDay),
	}
	for bm := 1; bm <= model.BioMonthCount; bm++ {
		l, err := tables.LimitsFor(bm)
		if err != nil {
			return nil, err
		}
		rc.limits[bm] = l
	}
	rc.retotal()
	return rc, nil
}

func (rc *RunContext) retotal() {
	for d := range rc.dayTotals {
		rc.dayTotals[d] = 0
	}
	for bm := range rc.window {
		rc.window[bm] = 0
	}
	rc.year = 0
	rc.Grid.Each(func(c *model.Cell) {
		p := c.Production()
		rc.dayTotals[c.Day] += p
		rc.window[c.BioMonth] += p
		rc.year += p
	})
}

// DayTotal returns the production of row d.
func (rc *RunContext) DayTotal(d int) int { return rc.dayTotals[d] }

// WindowTotal returns the production of bi-month bm.
func (rc *RunContext) WindowTotal(bm int) int { return rc.window[bm] }

// YearTotal returns the production of the whole grid.
func (rc *RunContext) YearTotal() int { return rc.year }

// Limits returns the quotas of bi-month bm.
func (rc *RunContext) Limits(bm int) reference.Limits { return rc.limits[bm] }

// HourlyCap returns the combined production allowed in c.
func (rc *RunContext) HourlyCap(c *model.Cell) int { return rc.limits[c.BioMonth].Hourly.Max }

func (rc *RunContext) version(c *model.Cell) uint32 {
	return rc.versions[c.Day*model.HoursPerDay+c.Hour]
}

// set moves side of c to the given operating point, refreshing the specific
// energy, the cost and every running total.
func (rc *RunContext) set(c *model.Cell, side model.Side, pumps, production int) error {
	f := c.Facility(side)
	if f.Shutdown {
		return fmt.Errorf("set %s at day %d hour %d: %w", side, c.Day, c.Hour, ErrNotEligible)
	}
	se, err := rc.Tables.SpecificEnergyFor(side, c.Month(), pumps)
	if err != nil {
		return err
	}
	delta := production - f.Production
	f.Pumps = pumps
	f.SpecificEnergy = se
	f.Production = production
	Recost(c)

	rc.dayTotals[c.Day] += delta
	rc.window[c.BioMonth] += delta
	rc.year += delta
	rc.versions[c.Day*model.HoursPerDay+c.Hour]++
	return nil
}

// move is a target operating point of one facility.
type move struct {
	pumps      int
	production int
}

func (rc *RunContext) apply(c *model.Cell, side model.Side, m move) (int, error) {
	before := c.Facility(side).Production
	if err := rc.set(c, side, m.pumps, m.production); err != nil {
		return 0, err
	}
	return m.production - before, nil
}
