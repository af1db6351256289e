package model

import (
	"fmt"
	"strings"
	"time"
)

// TariffBand is one of the three time-of-use price tiers.
type TariffBand int

const (
	BandLow TariffBand = iota
	BandMid
	BandPeak
)

// Bands lists every tariff band from cheapest to most expensive.
var Bands = [...]TariffBand{BandLow, BandMid, BandPeak}

// String returns the band name.
func (b TariffBand) String() string {
	switch b {
	case BandLow:
		return "LOW"
	case BandMid:
		return "MID"
	case BandPeak:
		return "PEAK"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b TariffBand) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *TariffBand) UnmarshalText(text []byte) error {
	v, err := ParseTariffBand(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ParseTariffBand accepts LOW/MID/PEAK as well as the utility's own names
// SHEFEL/GEVA/PISGA, case-insensitively.
func ParseTariffBand(s string) (TariffBand, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW", "SHEFEL":
		return BandLow, nil
	case "MID", "GEVA":
		return BandMid, nil
	case "PEAK", "PISGA":
		return BandPeak, nil
	default:
		return 0, fmt.Errorf("unknown tariff band %q", s)
	}
}

// Season groups calendar months sharing a tariff table.
type Season string

const (
	Summer       Season = "summer"
	Winter       Season = "winter"
	SpringAutumn Season = "spring_autumn"
)

// Seasons lists every season.
var Seasons = [...]Season{Summer, Winter, SpringAutumn}

// SeasonOf returns the tariff season of month m.
func SeasonOf(m time.Month) Season {
	switch m {
	case time.July, time.August:
		return Summer
	case time.January, time.February, time.December:
		return Winter
	default:
		return SpringAutumn
	}
}

// DayType is the day representation used by the tariff table.
type DayType string

const (
	Weekdays             DayType = "weekdays"
	FridayHolidayEvening DayType = "friday_holiday_evening"
	SaturdayHoliday      DayType = "saturday_holiday"
)

// DayTypes lists every day type.
var DayTypes = [...]DayType{Weekdays, FridayHolidayEvening, SaturdayHoliday}

// ParseDayType validates a day type name.
func ParseDayType(s string) (DayType, error) {
	d := DayType(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Weekdays, FridayHolidayEvening, SaturdayHoliday:
		return d, nil
	default:
		return "", fmt.Errorf("unknown day type %q", s)
	}
}

// DayTypeOf derives the day type from the weekday. The working week runs
// Sunday to Thursday.
func DayTypeOf(w time.Weekday) DayType {
	switch w {
	case time.Friday:
		return FridayHolidayEvening
	case time.Saturday:
		return SaturdayHoliday
	default:
		return Weekdays
	}
}

// BioMonth returns the two-month quota window (1..6) containing month m.
func BioMonth(m time.Month) int { return (int(m) + 1) / 2 }

// BioMonthCount is the number of quota windows in a year.
const BioMonthCount = 6
