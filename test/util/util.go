// Package util provides reference-data fixtures shared across package tests.
//
// Tables builds a complete, uniform set of reference tables: one tariff band
// for every hour unless overridden, contiguous production ranges of Step cubic
// meters per pump, one specific energy for every month and generous quotas.
//
// ReferenceYAML is the same data set in the on-disk format read by
// reference.LoadFile.
package util

import (
	"time"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
)

// Fixture describes a uniform reference data set.
type Fixture struct {
	Band           model.TariffBand
	Tariffs        map[model.TariffBand]float64
	SpecificEnergy float64
	Step           int
	HourlyMax      int
	DailyMin       int
	DailyMax       int
	BioMonthlyMin  int
	BioMonthlyMax  int
}

// DefaultFixture returns a fixture whose quotas never bind.
func DefaultFixture() Fixture {
	return Fixture{
		Band:           model.BandLow,
		Tariffs:        map[model.TariffBand]float64{model.BandLow: 0.2, model.BandMid: 0.4, model.BandPeak: 0.8},
		SpecificEnergy: 3.5,
		Step:           100,
		HourlyMax:      10 * 100,
	}
}

// Tables builds reference tables from f.
func Tables(f Fixture) *reference.Tables {
	t := &reference.Tables{
		Bands:          make(map[model.Season]map[model.DayType][model.HoursPerDay]model.TariffBand),
		Production:     make(map[model.Side]map[int]reference.Range),
		SpecificEnergy: make(map[model.Side]map[time.Month]map[int]float64),
		CostLimits:     make(map[time.Month]map[model.TariffBand]reference.CostLimit),
		Limits:         make(map[int]reference.Limits),
	}
	for _, s := range model.Seasons {
		t.Bands[s] = make(map[model.DayType][model.HoursPerDay]model.TariffBand)
		for _, d := range model.DayTypes {
			var row [model.HoursPerDay]model.TariffBand
			for h := range row {
				row[h] = f.Band
			}
			t.Bands[s][d] = row
		}
	}
	for _, side := range model.Sides {
		t.Production[side] = make(map[int]reference.Range)
		t.Production[side][0] = reference.Range{Min: 0, Max: 0}
		for p := 1; p <= model.MaxPumps; p++ {
			t.Production[side][p] = reference.Range{Min: (p-1)*f.Step + 1, Max: p * f.Step}
		}
		t.SpecificEnergy[side] = make(map[time.Month]map[int]float64)
		for m := time.January; m <= time.December; m++ {
			t.SpecificEnergy[side][m] = make(map[int]float64)
			for p := 0; p <= model.MaxPumps; p++ {
				t.SpecificEnergy[side][m][p] = f.SpecificEnergy
			}
		}
	}
	for m := time.January; m <= time.December; m++ {
		t.CostLimits[m] = make(map[model.TariffBand]reference.CostLimit)
		for _, b := range model.Bands {
			t.CostLimits[m][b] = reference.CostLimit{TariffCost: f.Tariffs[b], SecondaryTariffCost: f.Tariffs[b] / 4}
		}
	}
	for bm := 1; bm <= model.BioMonthCount; bm++ {
		t.Limits[bm] = reference.Limits{
			Hourly:     reference.Range{Min: 0, Max: f.HourlyMax},
			Daily:      reference.Range{Min: f.DailyMin, Max: f.DailyMax},
			BioMonthly: reference.Range{Min: f.BioMonthlyMin, Max: f.BioMonthlyMax},
		}
	}
	return t
}

// SetBandRow overrides the bands of one season and day type.
func SetBandRow(t *reference.Tables, s model.Season, d model.DayType, bands [model.HoursPerDay]model.TariffBand) {
	t.Bands[s][d] = bands
}

// ReferenceYAML is a small but complete reference file.
const ReferenceYAML = `
bands:
  summer:
    weekdays: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, MID, MID, MID, MID, MID, MID, MID, MID, MID, MID, PEAK, PEAK, PEAK, PEAK, PEAK, MID, LOW]
    friday_holiday_evening: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, MID, MID, MID, MID, MID, LOW, LOW]
    saturday_holiday: [SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL, SHEFEL]
  winter:
    weekdays: [LOW, LOW, LOW, LOW, LOW, LOW, MID, MID, MID, MID, MID, MID, MID, MID, MID, MID, PEAK, PEAK, PEAK, PEAK, PEAK, PEAK, MID, LOW]
    friday_holiday_evening: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, MID, MID, MID, MID, MID, MID, LOW, LOW]
    saturday_holiday: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW]
  spring_autumn:
    weekdays: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, GEVA, GEVA, GEVA, GEVA, GEVA, GEVA, GEVA, GEVA, GEVA, GEVA, PISGA, PISGA, PISGA, PISGA, GEVA, LOW, LOW]
    friday_holiday_evening: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, MID, MID, MID, MID, LOW, LOW, LOW]
    saturday_holiday: [LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW, LOW]
holidays:
  - {name: Passover, date: 2024-04-23, band: saturday_holiday}
  - {name: Passover eve, date: 22/04/2024, band: friday_holiday_evening}
elections:
  - 2024-02-27
shutdowns:
  - {date: 2024-03-10, to_date: 2024-03-11, from_hour: 8, to_hour: 12, side: north}
  - {date: 2024-06-01, from_hour: 0, to_hour: 23, side: south}
production:
  north: {0: {min: 0, max: 0}, 1: {min: 1, max: 1000}, 2: {min: 1001, max: 2000}, 3: {min: 2001, max: 3000}, 4: {min: 3001, max: 4000}, 5: {min: 4001, max: 5000}}
  south: {0: {min: 0, max: 0}, 1: {min: 1, max: 900}, 2: {min: 901, max: 1800}, 3: {min: 1801, max: 2700}, 4: {min: 2701, max: 3600}, 5: {min: 3601, max: 4500}}
specific_energy:
  north: {1: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 2: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 3: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 4: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 5: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 6: {0: 0, 1: 3.5, 2: 3.6, 3: 3.7, 4: 3.8, 5: 3.9}, 7: {0: 0, 1: 3.5, 2: 3.6, 3: 3.7, 4: 3.8, 5: 3.9}, 8: {0: 0, 1: 3.5, 2: 3.6, 3: 3.7, 4: 3.8, 5: 3.9}, 9: {0: 0, 1: 3.5, 2: 3.6, 3: 3.7, 4: 3.8, 5: 3.9}, 10: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 11: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 12: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}}
  south: {1: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 2: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 3: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 4: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 5: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 6: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 7: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 8: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 9: {0: 0, 1: 3.4, 2: 3.5, 3: 3.6, 4: 3.7, 5: 3.8}, 10: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 11: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}, 12: {0: 0, 1: 3.3, 2: 3.4, 3: 3.5, 4: 3.6, 5: 3.7}}
cost_limits:
  1: {LOW: {tariff_cost: 0.21, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.42, secondary_tariff_cost: 0.1, energy_limit: 0}, PEAK: {tariff_cost: 1.1, secondary_tariff_cost: 0.3, energy_limit: 0}}
  2: {LOW: {tariff_cost: 0.21, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.42, secondary_tariff_cost: 0.1, energy_limit: 0}, PEAK: {tariff_cost: 1.1, secondary_tariff_cost: 0.3, energy_limit: 0}}
  3: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  4: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  5: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  6: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  7: {LOW: {tariff_cost: 0.23, secondary_tariff_cost: 0.06, energy_limit: 0}, MID: {tariff_cost: 0.5, secondary_tariff_cost: 0.12, energy_limit: 0}, PEAK: {tariff_cost: 1.6, secondary_tariff_cost: 0.4, energy_limit: 0}}
  8: {LOW: {tariff_cost: 0.23, secondary_tariff_cost: 0.06, energy_limit: 0}, MID: {tariff_cost: 0.5, secondary_tariff_cost: 0.12, energy_limit: 0}, PEAK: {tariff_cost: 1.6, secondary_tariff_cost: 0.4, energy_limit: 0}}
  9: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  10: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  11: {LOW: {tariff_cost: 0.19, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.31, secondary_tariff_cost: 0.08, energy_limit: 0}, PEAK: {tariff_cost: 0.55, secondary_tariff_cost: 0.14, energy_limit: 0}}
  12: {LOW: {tariff_cost: 0.21, secondary_tariff_cost: 0.05, energy_limit: 0}, MID: {tariff_cost: 0.42, secondary_tariff_cost: 0.1, energy_limit: 0}, PEAK: {tariff_cost: 1.1, secondary_tariff_cost: 0.3, energy_limit: 0}}
biomonthly_limits:
  1: {hourly: {min: 0, max: 8000}, daily: {min: 60000, max: 0}, biomonthly: {min: 3600000, max: 0}}
  2: {hourly: {min: 0, max: 8000}, daily: {min: 60000, max: 0}, biomonthly: {min: 3600000, max: 0}}
  3: {hourly: {min: 0, max: 8000}, daily: {min: 60000, max: 0}, biomonthly: {min: 3600000, max: 0}}
  4: {hourly: {min: 0, max: 8000}, daily: {min: 60000, max: 0}, biomonthly: {min: 3600000, max: 0}}
  5: {hourly: {min: 0, max: 8000}, daily: {min: 60000, max: 0}, biomonthly: {min: 3600000, max: 0}}
  6: {hourly: {min: 0, max: 8000}, daily: {min: 60000, max: 0}, biomonthly: {min: 3600000, max: 0}}
`
