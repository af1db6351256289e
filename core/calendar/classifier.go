// Package calendar maps calendar dates and hours to tariff seasons, day types
// and bands. Holiday and election calendars override the weekday-derived day
// type for all 24 hours of a date.
package calendar

import (
	"time"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
)

// Classification describes how a date is priced and which quota window it
// belongs to.
type Classification struct {
	Season   model.Season
	DayType  model.DayType
	BioMonth int
	Holiday  string // name of the matching holiday, if any
	Election bool
}

// Classifier is safe for concurrent use; it never mutates its tables.
type Classifier struct {
	tables    *reference.Tables
	holidays  map[time.Time]reference.Holiday
	elections map[time.Time]struct{}
}

// New indexes the holiday and election calendars of t.
func New(t *reference.Tables) *Classifier {
	c := &Classifier{
		tables:    t,
		holidays:  make(map[time.Time]reference.Holiday, len(t.Holidays)),
		elections: make(map[time.Time]struct{}, len(t.Elections)),
	}
	for _, h := range t.Holidays {
		c.holidays[dayKey(h.Date)] = h
	}
	for _, e := range t.Elections {
		c.elections[dayKey(e)] = struct{}{}
	}
	return c
}

func dayKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Classify returns the season, day type and bi-month of date. Elections take
// precedence over holidays.
func (c *Classifier) Classify(date time.Time) Classification {
	cl := Classification{
		Season:   model.SeasonOf(date.Month()),
		DayType:  model.DayTypeOf(date.Weekday()),
		BioMonth: model.BioMonth(date.Month()),
	}
	key := dayKey(date)
	if h, ok := c.holidays[key]; ok {
		cl.DayType = h.DayType
		cl.Holiday = h.Name
	}
	if _, ok := c.elections[key]; ok {
		cl.DayType = model.SaturdayHoliday
		cl.Election = true
	}
	return cl
}

// Band looks up the tariff band of an hour. A missing table entry is a
// *reference.ConfigurationError.
func (c *Classifier) Band(season model.Season, dayType model.DayType, hour int) (model.TariffBand, error) {
	return c.tables.Band(season, dayType, hour)
}

// DayBands resolves the bands of all hours of date at once.
func (c *Classifier) DayBands(date time.Time) (Classification, [model.HoursPerDay]model.TariffBand, error) {
	var bands [model.HoursPerDay]model.TariffBand
	cl := c.Classify(date)
	for h := range bands {
		b, err := c.Band(cl.Season, cl.DayType, h)
		if err != nil {
			return cl, bands, err
		}
		bands[h] = b
	}
	return cl, bands, nil
}
