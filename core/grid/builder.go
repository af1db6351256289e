// Package grid builds the hourly grid of a planning year: one row per day,
// 24 cells per row, classified and banded, with shutdown windows applied.
package grid

import (
	"fmt"

	"github.com/kilianp07/pumpplan/core/calendar"
	"github.com/kilianp07/pumpplan/core/logger"
	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
)

// PlannedDays is the number of rows of a grid unless full leap years are
// enabled.
const PlannedDays = 365

// Builder creates grids from reference tables.
type Builder struct {
	tables       *reference.Tables
	classifier   *calendar.Classifier
	fullLeapYear bool
	log          logger.Logger
}

// NewBuilder returns a Builder. With fullLeapYear set, leap years get 366
// rows instead of PlannedDays.
func NewBuilder(tables *reference.Tables, fullLeapYear bool, log logger.Logger) *Builder {
	return &Builder{
		tables:       tables,
		classifier:   calendar.New(tables),
		fullLeapYear: fullLeapYear,
		log:          logger.OrNop(log),
	}
}

// Days returns the number of rows a grid for year has.
func (b *Builder) Days(year int) int {
	if b.fullLeapYear {
		return model.DaysIn(year)
	}
	return PlannedDays
}

// Build returns the grid of year with every cell classified and banded and
// every shutdown window applied.
func (b *Builder) Build(year int) (*model.Grid, error) {
	g := model.NewGrid(year, b.Days(year))
	for d := range g.Rows {
		row := g.Rows[d]
		cl, bands, err := b.classifier.DayBands(row[0].Date)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", row[0].Date.Format("2006-01-02"), err)
		}
		for h := range row {
			c := &row[h]
			c.Season = cl.Season
			c.DayType = cl.DayType
			c.BioMonth = cl.BioMonth
			c.Band = bands[h]
		}
	}
	if err := b.applyShutdowns(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (b *Builder) applyShutdowns(g *model.Grid) error {
	for i, s := range b.tables.Shutdowns {
		if s.Side != model.North && s.Side != model.South {
			return &reference.ConfigurationError{Table: "shutdowns", Key: fmt.Sprintf("%d", i), Reason: "invalid side"}
		}
		if s.FromHour < 0 || s.ToHour >= model.HoursPerDay || s.FromHour > s.ToHour || s.ToDate.Before(s.Date) {
			return &reference.ConfigurationError{Table: "shutdowns", Key: fmt.Sprintf("%d", i), Reason: "invalid window"}
		}
		ignored := 0
		for day := s.Date; !day.After(s.ToDate); day = day.AddDate(0, 0, 1) {
			d, ok := g.DayIndex(day)
			if !ok {
				ignored++
				continue
			}
			for h := s.FromHour; h <= s.ToHour; h++ {
				f := g.Cell(d, h).Facility(s.Side)
				*f = model.FacilityState{Shutdown: true}
			}
		}
		if ignored > 0 {
			b.log.Warnf("shutdown %d (%s, %s..%s): %d day(s) outside the planned year %d ignored",
				i, s.Side, s.Date.Format("2006-01-02"), s.ToDate.Format("2006-01-02"), ignored, g.Year)
		}
	}
	return nil
}
