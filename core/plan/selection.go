package plan

import (
	"github.com/kilianp07/pumpplan/core/model"
)

// Direction selects whether a pass raises or lowers production.
type Direction int

const (
	Increase Direction = iota
	Decrease
)

func (d Direction) String() string {
	if d == Decrease {
		return "decrease"
	}
	return "increase"
}

// Candidate identifies one facility of one cell.
type Candidate struct {
	Day  int
	Hour int
	Side model.Side
}

// rank orders candidates: by cell cost (cheapest first when increasing, most
// expensive first when decreasing), then by pump balance, then by position.
type rank struct {
	cost    float64
	balance int
	day     int
	hour    int
	side    model.Side
}

func rankOf(c *model.Cell, side model.Side, dir Direction) rank {
	own := c.Facility(side).Pumps
	sib := c.Facility(side.Sibling()).Pumps
	balance := sib - own
	if dir == Decrease {
		balance = own - sib
	}
	return rank{cost: c.TotalCost, balance: balance, day: c.Day, hour: c.Hour, side: side}
}

func (a rank) before(b rank, dir Direction) bool {
	if a.cost != b.cost {
		if dir == Decrease {
			return a.cost > b.cost
		}
		return a.cost < b.cost
	}
	if a.balance != b.balance {
		return a.balance > b.balance
	}
	if a.day != b.day {
		return a.day < b.day
	}
	if a.hour != b.hour {
		return a.hour < b.hour
	}
	return a.side < b.side
}

// advanceMove returns the operating point Advance would move side of c to.
// The new production is the table maximum of the next pump count, trimmed so
// the cell stays within its hourly cap.
func (rc *RunContext) advanceMove(c *model.Cell, side model.Side) (move, bool) {
	f := c.Facility(side)
	if f.Shutdown || f.Pumps >= model.MaxPumps {
		return move{}, false
	}
	limit := rc.HourlyCap(c)
	if c.Production() >= limit {
		return move{}, false
	}
	r, err := rc.Tables.ProductionRange(side, f.Pumps+1)
	if err != nil {
		return move{}, false
	}
	production := min(r.Max, limit-c.Facility(side.Sibling()).Production)
	if production < r.Min || production <= f.Production {
		return move{}, false
	}
	m := move{pumps: f.Pumps + 1, production: production}
	if !rc.allowsIncrease(c, side, m) {
		return move{}, false
	}
	return m, true
}

// retreatMove returns the operating point Retreat would move side of c to:
// one pump fewer at that pump count's table maximum.
func (rc *RunContext) retreatMove(c *model.Cell, side model.Side) (move, bool) {
	f := c.Facility(side)
	if f.Shutdown || f.Pumps <= rc.Config.MinPumps {
		return move{}, false
	}
	r, err := rc.Tables.ProductionRange(side, f.Pumps-1)
	if err != nil {
		return move{}, false
	}
	if r.Max >= f.Production {
		return move{}, false
	}
	m := move{pumps: f.Pumps - 1, production: r.Max}
	if !rc.allowsDecrease(c, side, m) {
		return move{}, false
	}
	return m, true
}

func (rc *RunContext) moveFor(c *model.Cell, side model.Side, dir Direction) (move, bool) {
	if dir == Decrease {
		return rc.retreatMove(c, side)
	}
	return rc.advanceMove(c, side)
}

// movable reports whether side of c can change production in dir at all,
// by a full step or a partial one. It only weakens over a single-direction
// pass.
func (rc *RunContext) movable(c *model.Cell, side model.Side, dir Direction) bool {
	f := c.Facility(side)
	if f.Shutdown {
		return false
	}
	if dir == Decrease {
		return f.Production > 0
	}
	return c.Production() < rc.HourlyCap(c)
}

// allowsIncrease checks the hourly cap, the facility energy limit and the
// day and bi-month maxima for m.
func (rc *RunContext) allowsIncrease(c *model.Cell, side model.Side, m move) bool {
	f := c.Facility(side)
	delta := m.production - f.Production
	if c.Production()+delta > rc.HourlyCap(c) {
		return false
	}
	if f.EnergyLimit > 0 {
		se, err := rc.Tables.SpecificEnergyFor(side, c.Month(), m.pumps)
		if err != nil || se*float64(m.production) > float64(f.EnergyLimit) {
			return false
		}
	}
	l := rc.limits[c.BioMonth]
	if l.Daily.Max > 0 && rc.dayTotals[c.Day]+delta > l.Daily.Max {
		return false
	}
	if l.BioMonthly.Max > 0 && rc.window[c.BioMonth]+delta > l.BioMonthly.Max {
		return false
	}
	return true
}

// allowsDecrease checks that m keeps the cell, its day and its bi-month at or
// above their minima.
func (rc *RunContext) allowsDecrease(c *model.Cell, side model.Side, m move) bool {
	delta := c.Facility(side).Production - m.production
	l := rc.limits[c.BioMonth]
	if c.Production()-delta < l.Hourly.Min {
		return false
	}
	if rc.dayTotals[c.Day]-delta < l.Daily.Min {
		return false
	}
	return rc.window[c.BioMonth]-delta >= l.BioMonthly.Min
}

// SelectExtremal scans rows [from, to) and returns the best eligible
// candidate for dir, or false when none is eligible.
func (rc *RunContext) SelectExtremal(from, to int, dir Direction) (Candidate, bool) {
	cand, _, ok := rc.selectExtremal(from, to, dir)
	return cand, ok
}

func (rc *RunContext) selectExtremal(from, to int, dir Direction) (Candidate, move, bool) {
	var (
		best     rank
		bestMove move
		found    bool
	)
	for d := from; d < to; d++ {
		row := rc.Grid.Row(d)
		for h := range row {
			c := &row[h]
			for _, side := range model.Sides {
				m, ok := rc.moveFor(c, side, dir)
				if !ok {
					continue
				}
				r := rankOf(c, side, dir)
				if !found || r.before(best, dir) {
					best, bestMove, found = r, m, true
				}
			}
		}
	}
	if !found {
		return Candidate{}, move{}, false
	}
	return Candidate{Day: best.day, Hour: best.hour, Side: best.side}, bestMove, true
}

// Advance adds one pump to side of c and raises its production to the new
// pump count's table maximum, or to what the hourly cap leaves. It returns the
// production added, or ErrNotEligible.
func (rc *RunContext) Advance(c *model.Cell, side model.Side) (int, error) {
	m, ok := rc.advanceMove(c, side)
	if !ok {
		return 0, ErrNotEligible
	}
	return rc.apply(c, side, m)
}

// Retreat removes one pump from side of c and lowers its production to the
// new pump count's table maximum. It returns the production removed, or
// ErrNotEligible.
func (rc *RunContext) Retreat(c *model.Cell, side model.Side) (int, error) {
	m, ok := rc.retreatMove(c, side)
	if !ok {
		return 0, ErrNotEligible
	}
	delta, err := rc.apply(c, side, m)
	return -delta, err
}
