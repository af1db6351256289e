package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
	"github.com/kilianp07/pumpplan/test/util"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifySeasons(t *testing.T) {
	c := New(util.Tables(util.DefaultFixture()))
	cases := map[time.Month]model.Season{
		time.January:  model.Winter,
		time.February: model.Winter,
		time.March:    model.SpringAutumn,
		time.June:     model.SpringAutumn,
		time.July:     model.Summer,
		time.August:   model.Summer,
		time.November: model.SpringAutumn,
		time.December: model.Winter,
	}
	for m, want := range cases {
		assert.Equal(t, want, c.Classify(date(2024, m, 10)).Season, m.String())
	}
}

func TestClassifyDayTypeAndBioMonth(t *testing.T) {
	c := New(util.Tables(util.DefaultFixture()))
	// 2024-05-05 is a Sunday.
	assert.Equal(t, model.Weekdays, c.Classify(date(2024, 5, 5)).DayType)
	assert.Equal(t, model.Weekdays, c.Classify(date(2024, 5, 9)).DayType)
	assert.Equal(t, model.FridayHolidayEvening, c.Classify(date(2024, 5, 10)).DayType)
	assert.Equal(t, model.SaturdayHoliday, c.Classify(date(2024, 5, 11)).DayType)

	assert.Equal(t, 1, c.Classify(date(2024, 2, 29)).BioMonth)
	assert.Equal(t, 3, c.Classify(date(2024, 5, 1)).BioMonth)
	assert.Equal(t, 6, c.Classify(date(2024, 12, 31)).BioMonth)
}

func TestClassifyIdempotent(t *testing.T) {
	tables := util.Tables(util.DefaultFixture())
	tables.Holidays = []reference.Holiday{{Name: "Sukkot", Date: date(2024, 10, 17), DayType: model.SaturdayHoliday}}
	c := New(tables)
	for _, d := range []time.Time{date(2024, 10, 17), date(2024, 3, 3), date(2024, 7, 19)} {
		first, firstBands, err := c.DayBands(d)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			again, againBands, err := c.DayBands(d)
			require.NoError(t, err)
			assert.Equal(t, first, again)
			assert.Equal(t, firstBands, againBands)
		}
	}
}

func TestHolidayOverridesAllHours(t *testing.T) {
	tables := util.Tables(util.DefaultFixture())
	var weekday, holiday [model.HoursPerDay]model.TariffBand
	for h := range weekday {
		weekday[h] = model.BandPeak
		holiday[h] = model.BandLow
	}
	util.SetBandRow(tables, model.SpringAutumn, model.Weekdays, weekday)
	util.SetBandRow(tables, model.SpringAutumn, model.SaturdayHoliday, holiday)
	// 2024-04-23 is a Tuesday.
	tables.Holidays = []reference.Holiday{{Name: "Passover", Date: date(2024, 4, 23), DayType: model.SaturdayHoliday}}
	c := New(tables)

	cl, bands, err := c.DayBands(date(2024, 4, 23))
	require.NoError(t, err)
	assert.Equal(t, "Passover", cl.Holiday)
	assert.Equal(t, model.SaturdayHoliday, cl.DayType)
	for h, b := range bands {
		assert.Equal(t, model.BandLow, b, "hour %d", h)
	}

	_, bands, err = c.DayBands(date(2024, 4, 24))
	require.NoError(t, err)
	assert.Equal(t, model.BandPeak, bands[12])
}

func TestElectionForcesHoliday(t *testing.T) {
	tables := util.Tables(util.DefaultFixture())
	tables.Holidays = []reference.Holiday{{Name: "eve", Date: date(2024, 2, 27), DayType: model.FridayHolidayEvening}}
	tables.Elections = []time.Time{date(2024, 2, 27)}
	cl := New(tables).Classify(date(2024, 2, 27))
	assert.True(t, cl.Election)
	assert.Equal(t, model.SaturdayHoliday, cl.DayType)
}

func TestBandMissingEntry(t *testing.T) {
	tables := util.Tables(util.DefaultFixture())
	delete(tables.Bands[model.Summer], model.Weekdays)
	_, err := New(tables).Band(model.Summer, model.Weekdays, 3)
	var cfgErr *reference.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "bands", cfgErr.Table)
}
