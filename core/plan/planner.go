// Package plan computes the yearly hour-by-hour operating plan of the two
// pumping facilities.
//
// A run builds a fresh grid, puts every running facility at the baseline pump
// count and then applies three greedy passes, each raising the cheapest
// eligible facility one pump at a time:
//
//  1. daily: every day reaches its daily minimum;
//  2. bi-monthly: every two-month window reaches its minimum;
//  3. yearly: the grid total is brought to the requested target exactly,
//     lowering the most expensive facilities when the total is above it.
//
// Reference tables are read-only and may be shared by concurrent runs.
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/pumpplan/core/grid"
	"github.com/kilianp07/pumpplan/core/logger"
	"github.com/kilianp07/pumpplan/core/metrics"
	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
)

const (
	MinYear = 2000
	MaxYear = 2100
)

// Config holds the planner settings.
type Config struct {
	BaselinePumps int  `json:"baseline_pumps"`
	MinPumps      int  `json:"min_pumps"`
	FullLeapYear  bool `json:"full_leap_year"`
}

// Validate checks the pump counts.
func (c Config) Validate() error {
	if c.MinPumps < 0 || c.MinPumps > model.MaxPumps {
		return fmt.Errorf("min_pumps must be between 0 and %d", model.MaxPumps)
	}
	if c.BaselinePumps < c.MinPumps || c.BaselinePumps > model.MaxPumps {
		return fmt.Errorf("baseline_pumps must be between min_pumps (%d) and %d", c.MinPumps, model.MaxPumps)
	}
	return nil
}

// ProgressFunc is called after each unit of work of a pass: every day of the
// daily pass, every window of the bi-monthly pass and once for the yearly
// pass.
type ProgressFunc func(pass Pass, done, total int)

// Request is the input of one run.
type Request struct {
	Year   int `json:"year"`
	Target int `json:"target"`

	Progress ProgressFunc `json:"-"`
}

// Validate rejects requests that cannot be planned.
func (r Request) Validate() error {
	if r.Year < MinYear || r.Year > MaxYear {
		return &InputValidationError{Field: "year", Reason: fmt.Sprintf("must be between %d and %d", MinYear, MaxYear)}
	}
	if r.Target < 0 {
		return &InputValidationError{Field: "target", Reason: "must not be negative"}
	}
	return nil
}

// Planner runs the optimizer against a fixed set of reference tables.
type Planner struct {
	tables  *reference.Tables
	cfg     Config
	builder *grid.Builder
	log     logger.Logger
	rec     metrics.Recorder
}

// New creates a Planner. A nil logger or recorder disables logging or metrics.
func New(tables *reference.Tables, cfg Config, log logger.Logger, rec metrics.Recorder) *Planner {
	log = logger.OrNop(log)
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Planner{
		tables:  tables,
		cfg:     cfg,
		builder: grid.NewBuilder(tables, cfg.FullLeapYear, log),
		log:     log,
		rec:     rec,
	}
}

// Days returns the number of grid rows a run for year produces.
func (p *Planner) Days(year int) int { return p.builder.Days(year) }

// Run plans req.Year. Input and configuration problems are returned before
// any grid is built, with a nil Result. When a pass cannot satisfy its
// constraint the partially optimized Result is returned together with an
// *UnreachableConstraintError.
func (p *Planner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, &InputValidationError{Field: "planner", Reason: err.Error()}
	}
	if err := p.tables.Validate(p.cfg.MinPumps); err != nil {
		return nil, fmt.Errorf("reference tables: %w", err)
	}

	start := time.Now()
	g, err := p.builder.Build(req.Year)
	if err != nil {
		return nil, err
	}
	rc, err := NewRunContext(g, p.tables, p.cfg)
	if err != nil {
		return nil, err
	}
	if err := rc.Initialize(); err != nil {
		return nil, err
	}

	r := &run{
		RunContext: rc,
		id:         uuid.NewString(),
		log:        p.log,
		rec:        p.rec,
		progress:   req.Progress,
		summary:    newSummary(),
	}
	r.summary.BaselineProduction = rc.YearTotal()
	p.log.Infof("run %s: planning %d for target %d, baseline %d", r.id, req.Year, req.Target, rc.YearTotal())

	err = r.execute(ctx, req.Target)

	res := &Result{
		RunID:     r.id,
		Year:      req.Year,
		Target:    req.Target,
		StartedAt: start.UTC(),
		Grid:      g,
		Summary:   *r.summary,
	}
	res.Summary.finish(rc, time.Since(start), err)
	if err != nil {
		p.log.Errorf("run %s failed: %v", r.id, err)
	} else {
		p.log.Infof("run %s done: production %d cost %.2f in %s", r.id, res.Summary.FinalProduction, res.Summary.TotalCost, res.Summary.Duration)
	}
	if rerr := p.rec.RecordRun(res.runEvent()); rerr != nil {
		p.log.Warnf("record run %s: %v", r.id, rerr)
	}
	return res, err
}

// run is the state of one execution of the passes.
type run struct {
	*RunContext
	id       string
	log      logger.Logger
	rec      metrics.Recorder
	progress ProgressFunc
	summary  *Summary
}

func (r *run) execute(ctx context.Context, target int) error {
	steps := []struct {
		pass Pass
		fn   func(context.Context) error
	}{
		{PassDaily, r.dailyPass},
		{PassBioMonthly, r.bioMonthlyPass},
		{PassYearly, func(ctx context.Context) error { return r.yearlyPass(ctx, target) }},
	}
	for _, s := range steps {
		start := time.Now()
		r.log.Infof("run %s: %s pass starting at %d", r.id, s.pass, r.YearTotal())
		err := s.fn(ctx)
		r.recordPass(s.pass, time.Since(start), err)
		if err != nil {
			var uc *UnreachableConstraintError
			if errors.As(err, &uc) {
				r.summary.FailedPass = uc.Pass
			} else {
				r.summary.FailedPass = s.pass
			}
			return err
		}
		r.log.Infof("run %s: %s pass done at %d", r.id, s.pass, r.YearTotal())
	}
	return nil
}

func (r *run) recordPass(p Pass, d time.Duration, err error) {
	units := 1
	switch p {
	case PassDaily:
		units = r.Grid.Days()
	case PassBioMonthly:
		units = model.BioMonthCount
	}
	ev := metrics.PassEvent{
		RunID:     r.id,
		Pass:      string(p),
		Units:     units,
		Advances:  r.summary.Advances[p],
		Failed:    err != nil,
		Duration:  d,
		Component: "planner",
		Time:      time.Now(),
	}
	if p == PassDaily {
		ev.Skipped = len(r.summary.SkippedDays)
	}
	if p == PassYearly {
		ev.Retreats = r.summary.Retreats
	}
	if rerr := r.rec.RecordPass(ev); rerr != nil {
		r.log.Warnf("record %s pass: %v", p, rerr)
	}
}

func (r *run) report(p Pass, done, total int) {
	if r.progress != nil {
		r.progress(p, done, total)
	}
}

func (r *run) trace(p Pass, c *model.Cell, side model.Side, delta int) {
	f := c.Facility(side)
	r.log.Debugw("step", map[string]any{
		"run":        r.id,
		"pass":       string(p),
		"day":        c.Day,
		"hour":       c.Hour,
		"side":       side.String(),
		"pumps":      f.Pumps,
		"production": f.Production,
		"delta":      delta,
	})
}

func ceiling(rows int) int {
	return rows*model.HoursPerDay*len(model.Sides)*model.MaxPumps + 1
}
