package reference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pumpplan/core/model"
)

// Document is the on-disk layout of the reference data. Keys are kept as
// strings and numbers so that YAML and JSON decode the same way; Compile
// turns a Document into typed Tables.
type Document struct {
	Bands          map[string]map[string][]string     `json:"bands" yaml:"bands"`
	Holidays       []HolidayEntry                     `json:"holidays" yaml:"holidays"`
	Elections      []string                           `json:"elections" yaml:"elections"`
	Shutdowns      []ShutdownEntry                    `json:"shutdowns" yaml:"shutdowns"`
	Production     map[string]map[int]Range           `json:"production" yaml:"production"`
	SpecificEnergy map[string]map[int]map[int]float64 `json:"specific_energy" yaml:"specific_energy"`
	CostLimits     map[int]map[string]CostLimit       `json:"cost_limits" yaml:"cost_limits"`
	Limits         map[int]Limits                     `json:"biomonthly_limits" yaml:"biomonthly_limits"`
}

// HolidayEntry is one holiday calendar row. Band holds the day type the date
// is planned as.
type HolidayEntry struct {
	Name string `json:"name" yaml:"name"`
	Date string `json:"date" yaml:"date"`
	Band string `json:"band" yaml:"band"`
}

// ShutdownEntry is one row of the shutdown schedule. ToDate is optional.
type ShutdownEntry struct {
	Date     string `json:"date" yaml:"date"`
	ToDate   string `json:"to_date,omitempty" yaml:"to_date,omitempty"`
	FromHour int    `json:"from_hour" yaml:"from_hour"`
	ToHour   int    `json:"to_hour" yaml:"to_hour"`
	Side     string `json:"side" yaml:"side"`
}

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDate accepts ISO dates and the dd/mm/yyyy form used by the plant's
// spreadsheets.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// LoadFile reads a YAML or JSON reference file and compiles it.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	doc, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return Compile(doc)
}

// Decode reads a Document from r in the given format ("yaml", "yml" or "json").
func Decode(r io.Reader, format string) (Document, error) {
	var doc Document
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return doc, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return doc, err
		}
	default:
		return doc, fmt.Errorf("unsupported format: %s", format)
	}
	return doc, nil
}

// Compile converts a Document into Tables. Every malformed entry is reported
// as a ConfigurationError; the returned error joins all of them.
func Compile(doc Document) (*Tables, error) {
	t := &Tables{
		Bands:          make(map[model.Season]map[model.DayType][model.HoursPerDay]model.TariffBand),
		Production:     make(map[model.Side]map[int]Range),
		SpecificEnergy: make(map[model.Side]map[time.Month]map[int]float64),
		CostLimits:     make(map[time.Month]map[model.TariffBand]CostLimit),
		Limits:         make(map[int]Limits),
	}
	var errs []error

	for season, days := range doc.Bands {
		s := model.Season(strings.ToLower(season))
		if s != model.Summer && s != model.Winter && s != model.SpringAutumn {
			errs = append(errs, malformed("bands", season, "unknown season"))
			continue
		}
		if t.Bands[s] == nil {
			t.Bands[s] = make(map[model.DayType][model.HoursPerDay]model.TariffBand)
		}
		for day, hours := range days {
			d, err := model.ParseDayType(day)
			if err != nil {
				errs = append(errs, malformed("bands", season+"/"+day, "%v", err))
				continue
			}
			if len(hours) != model.HoursPerDay {
				errs = append(errs, malformed("bands", season+"/"+day, "expected %d hours, got %d", model.HoursPerDay, len(hours)))
				continue
			}
			var row [model.HoursPerDay]model.TariffBand
			ok := true
			for h, name := range hours {
				b, err := model.ParseTariffBand(name)
				if err != nil {
					errs = append(errs, malformed("bands", fmt.Sprintf("%s/%s/%d", season, day, h), "%v", err))
					ok = false
					continue
				}
				row[h] = b
			}
			if ok {
				t.Bands[s][d] = row
			}
		}
	}

	for i, h := range doc.Holidays {
		key := fmt.Sprintf("%d", i)
		date, err := ParseDate(h.Date)
		if err != nil {
			errs = append(errs, malformed("holidays", key, "%v", err))
			continue
		}
		d, err := model.ParseDayType(h.Band)
		if err != nil {
			errs = append(errs, malformed("holidays", key, "%v", err))
			continue
		}
		t.Holidays = append(t.Holidays, Holiday{Name: h.Name, Date: date, DayType: d})
	}

	for i, e := range doc.Elections {
		date, err := ParseDate(e)
		if err != nil {
			errs = append(errs, malformed("elections", fmt.Sprintf("%d", i), "%v", err))
			continue
		}
		t.Elections = append(t.Elections, date)
	}

	for i, e := range doc.Shutdowns {
		key := fmt.Sprintf("%d", i)
		s, err := compileShutdown(e)
		if err != nil {
			errs = append(errs, malformed("shutdowns", key, "%v", err))
			continue
		}
		t.Shutdowns = append(t.Shutdowns, s)
	}

	for name, pumps := range doc.Production {
		side, err := model.ParseSide(name)
		if err != nil {
			errs = append(errs, malformed("production", name, "%v", err))
			continue
		}
		t.Production[side] = make(map[int]Range, len(pumps))
		for p, r := range pumps {
			if p < 0 || p > model.MaxPumps {
				errs = append(errs, malformed("production", fmt.Sprintf("%s/%d", name, p), "pump count out of range"))
				continue
			}
			t.Production[side][p] = r
		}
	}

	for name, months := range doc.SpecificEnergy {
		side, err := model.ParseSide(name)
		if err != nil {
			errs = append(errs, malformed("specific_energy", name, "%v", err))
			continue
		}
		t.SpecificEnergy[side] = make(map[time.Month]map[int]float64, len(months))
		for m, pumps := range months {
			if m < 1 || m > 12 {
				errs = append(errs, malformed("specific_energy", fmt.Sprintf("%s/%d", name, m), "month out of range"))
				continue
			}
			t.SpecificEnergy[side][time.Month(m)] = pumps
		}
	}

	for m, bands := range doc.CostLimits {
		if m < 1 || m > 12 {
			errs = append(errs, malformed("cost_limits", fmt.Sprintf("%d", m), "month out of range"))
			continue
		}
		row := make(map[model.TariffBand]CostLimit, len(bands))
		for name, cl := range bands {
			b, err := model.ParseTariffBand(name)
			if err != nil {
				errs = append(errs, malformed("cost_limits", fmt.Sprintf("%d/%s", m, name), "%v", err))
				continue
			}
			row[b] = cl
		}
		t.CostLimits[time.Month(m)] = row
	}

	for bm, l := range doc.Limits {
		if bm < 1 || bm > model.BioMonthCount {
			errs = append(errs, malformed("biomonthly_limits", fmt.Sprintf("%d", bm), "bi-month out of range"))
			continue
		}
		t.Limits[bm] = l
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t, nil
}

func compileShutdown(e ShutdownEntry) (Shutdown, error) {
	date, err := ParseDate(e.Date)
	if err != nil {
		return Shutdown{}, err
	}
	to := date
	if e.ToDate != "" {
		if to, err = ParseDate(e.ToDate); err != nil {
			return Shutdown{}, err
		}
	}
	side, err := model.ParseSide(e.Side)
	if err != nil {
		return Shutdown{}, err
	}
	s := Shutdown{Date: date, ToDate: to, FromHour: e.FromHour, ToHour: e.ToHour, Side: side}
	if err := s.validate(); err != nil {
		return Shutdown{}, err
	}
	return s, nil
}
