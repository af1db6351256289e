package reference

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/pumpplan/core/model"
)

// Range is an inclusive [Min, Max] bound.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// CostLimit holds the tariff prices and energy allowance of a month and band.
type CostLimit struct {
	TariffCost          float64 `json:"tariff_cost" yaml:"tariff_cost"`
	SecondaryTariffCost float64 `json:"secondary_tariff_cost" yaml:"secondary_tariff_cost"`
	EnergyLimit         int     `json:"energy_limit" yaml:"energy_limit"`
}

// Limits are the production quotas of one bi-month. A zero Max means the
// quota has no upper bound.
type Limits struct {
	Hourly     Range `json:"hourly" yaml:"hourly"`
	Daily      Range `json:"daily" yaml:"daily"`
	BioMonthly Range `json:"biomonthly" yaml:"biomonthly"`
}

// Holiday overrides the day type of a date.
type Holiday struct {
	Name    string
	Date    time.Time
	DayType model.DayType
}

// Shutdown takes one facility offline on every day of [Date, ToDate] for the
// hours [FromHour, ToHour].
type Shutdown struct {
	Date     time.Time
	ToDate   time.Time
	FromHour int
	ToHour   int
	Side     model.Side
}

// Covers reports whether the window includes the given day and hour.
func (s Shutdown) Covers(day time.Time, hour int) bool {
	if day.Before(s.Date) || day.After(s.ToDate) {
		return false
	}
	return hour >= s.FromHour && hour <= s.ToHour
}

// Tables is the read-only reference data of a run. Tables are never mutated
// after loading and may be shared by concurrent runs.
type Tables struct {
	Bands          map[model.Season]map[model.DayType][model.HoursPerDay]model.TariffBand
	Holidays       []Holiday
	Elections      []time.Time
	Shutdowns      []Shutdown
	Production     map[model.Side]map[int]Range
	SpecificEnergy map[model.Side]map[time.Month]map[int]float64
	CostLimits     map[time.Month]map[model.TariffBand]CostLimit
	Limits         map[int]Limits
}

// Band returns the tariff band of an hour.
func (t *Tables) Band(season model.Season, dayType model.DayType, hour int) (model.TariffBand, error) {
	key := fmt.Sprintf("%s/%s/%d", season, dayType, hour)
	if hour < 0 || hour >= model.HoursPerDay {
		return 0, malformed("bands", key, "hour out of range")
	}
	rows, ok := t.Bands[season]
	if !ok {
		return 0, missing("bands", key)
	}
	row, ok := rows[dayType]
	if !ok {
		return 0, missing("bands", key)
	}
	return row[hour], nil
}

// ProductionRange returns the production bounds of side running pumps pumps.
func (t *Tables) ProductionRange(side model.Side, pumps int) (Range, error) {
	r, ok := t.Production[side][pumps]
	if !ok {
		return Range{}, missing("production", fmt.Sprintf("%s/%d", side, pumps))
	}
	return r, nil
}

// SpecificEnergyFor returns the kWh per cubic meter of side in month with the
// given number of pumps.
func (t *Tables) SpecificEnergyFor(side model.Side, month time.Month, pumps int) (float64, error) {
	se, ok := t.SpecificEnergy[side][month][pumps]
	if !ok {
		return 0, missing("specific_energy", fmt.Sprintf("%s/%d/%d", side, month, pumps))
	}
	return se, nil
}

// CostLimitFor returns the prices and energy allowance for a month and band.
func (t *Tables) CostLimitFor(month time.Month, band model.TariffBand) (CostLimit, error) {
	cl, ok := t.CostLimits[month][band]
	if !ok {
		return CostLimit{}, missing("cost_limits", fmt.Sprintf("%d/%s", month, band))
	}
	return cl, nil
}

// LimitsFor returns the quotas of bi-month bm (1..6).
func (t *Tables) LimitsFor(bm int) (Limits, error) {
	l, ok := t.Limits[bm]
	if !ok {
		return Limits{}, missing("biomonthly_limits", fmt.Sprintf("%d", bm))
	}
	return l, nil
}

// Validate checks that every lookup a run can perform with pump counts in
// [minPumps, model.MaxPumps] is answerable. All problems are reported at once.
func (t *Tables) Validate(minPumps int) error {
	var errs []error
	for _, s := range model.Seasons {
		for _, d := range model.DayTypes {
			if _, ok := t.Bands[s][d]; !ok {
				errs = append(errs, missing("bands", fmt.Sprintf("%s/%s", s, d)))
			}
		}
	}
	for _, side := range model.Sides {
		prevMax := -1
		for p := minPumps; p <= model.MaxPumps; p++ {
			r, err := t.ProductionRange(side, p)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if r.Min < 0 || r.Min > r.Max {
				errs = append(errs, malformed("production", fmt.Sprintf("%s/%d", side, p), "invalid range %d..%d", r.Min, r.Max))
			}
			if r.Max < prevMax {
				errs = append(errs, malformed("production", fmt.Sprintf("%s/%d", side, p), "max %d below the previous pump count", r.Max))
			}
			prevMax = r.Max
		}
		for m := time.January; m <= time.December; m++ {
			for p := minPumps; p <= model.MaxPumps; p++ {
				se, err := t.SpecificEnergyFor(side, m, p)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if se < 0 {
					errs = append(errs, malformed("specific_energy", fmt.Sprintf("%s/%d/%d", side, m, p), "negative value"))
				}
			}
		}
	}
	for m := time.January; m <= time.December; m++ {
		for _, b := range model.Bands {
			if _, err := t.CostLimitFor(m, b); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for bm := 1; bm <= model.BioMonthCount; bm++ {
		l, err := t.LimitsFor(bm)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		key := fmt.Sprintf("%d", bm)
		for name, r := range map[string]Range{"hourly": l.Hourly, "daily": l.Daily, "biomonthly": l.BioMonthly} {
			if r.Min < 0 || (r.Max > 0 && r.Min > r.Max) {
				errs = append(errs, malformed("biomonthly_limits", key+"/"+name, "invalid range %d..%d", r.Min, r.Max))
			}
		}
		if l.Hourly.Max <= 0 {
			errs = append(errs, malformed("biomonthly_limits", key+"/hourly", "max must be positive"))
		}
	}
	for i, s := range t.Shutdowns {
		if err := s.validate(); err != nil {
			errs = append(errs, malformed("shutdowns", fmt.Sprintf("%d", i), "%v", err))
		}
	}
	return errors.Join(errs...)
}

func (s Shutdown) validate() error {
	if s.FromHour < 0 || s.ToHour >= model.HoursPerDay || s.FromHour > s.ToHour {
		return fmt.Errorf("invalid hour range %d..%d", s.FromHour, s.ToHour)
	}
	if s.ToDate.Before(s.Date) {
		return fmt.Errorf("to_date before date")
	}
	return nil
}
