package plan

import (
	"context"

	"github.com/kilianp07/pumpplan/core/model"
)

// yearlyPass brings the grid total to target exactly.
func (r *run) yearlyPass(ctx context.Context, target int) error {
	var err error
	switch {
	case r.year < target:
		err = r.toTarget(ctx, target, Increase)
	case r.year > target:
		err = r.toTarget(ctx, target, Decrease)
	}
	if err == nil {
		r.report(PassYearly, 1, 1)
	}
	return err
}

// toTarget moves one pump at a time on the best candidate while the step
// fits in the remaining gap, then closes the gap with a single remainder
// adjustment. A candidate whose full step is blocked or too large is offered
// the remainder; when that does not fit either it is parked until a later
// full step shrinks the gap to what it could absorb.
func (r *run) toTarget(ctx context.Context, target int, dir Direction) error {
	q := newPartialQueue(r.RunContext, 0, r.Grid.Days(), dir)
	limit := ceiling(r.Grid.Days())
	for steps, pops := 0, 0; r.year != target; pops++ {
		if steps >= limit {
			return r.unreachable(PassYearly, r.Grid.Year, target, r.year, ErrIterationCeiling)
		}
		if pops%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cand, ok := q.next()
		if !ok {
			return r.unreachable(PassYearly, r.Grid.Year, target, r.year, ErrNoCandidate)
		}
		c := r.Grid.Cell(cand.Day, cand.Hour)
		f := c.Facility(cand.Side)
		gap := target - r.year
		if dir == Decrease {
			gap = -gap
		}

		if m, ok := r.moveFor(c, cand.Side, dir); ok {
			step := m.production - f.Production
			if dir == Decrease {
				step = -step
			}
			if step <= gap {
				delta, err := r.apply(c, cand.Side, m)
				if err != nil {
					return err
				}
				steps++
				q.touch(c)
				if dir == Increase {
					r.summary.Advances[PassYearly]++
					q.release(target - r.year)
				} else {
					r.summary.Retreats++
					q.release(r.year - target)
				}
				r.trace(PassYearly, c, cand.Side, delta)
				continue
			}
		}

		rm, ok := r.remainder(c, cand.Side, gap, dir)
		if !ok {
			q.park(cand, r.reach(c, cand.Side, dir))
			continue
		}
		delta, err := r.apply(c, cand.Side, rm)
		if err != nil {
			return err
		}
		steps++
		r.summary.Remainders++
		r.trace(PassYearly, c, cand.Side, delta)
	}
	return nil
}

// reach is the largest gap a remainder on side of c could absorb, from the
// table ranges of its current and neighbouring pump counts and, when
// increasing, the hourly cap.
func (r *run) reach(c *model.Cell, side model.Side, dir Direction) int {
	f := c.Facility(side)
	if dir == Increase {
		top := f.Production
		if cur, err := r.Tables.ProductionRange(side, f.Pumps); err == nil {
			top = max(top, cur.Max)
		}
		if f.Pumps < model.MaxPumps {
			if next, err := r.Tables.ProductionRange(side, f.Pumps+1); err == nil {
				top = max(top, next.Max)
			}
		}
		top = min(top, f.Production+r.HourlyCap(c)-c.Production())
		return top - f.Production
	}
	bottom := f.Production
	if cur, err := r.Tables.ProductionRange(side, f.Pumps); err == nil {
		bottom = min(bottom, cur.Min)
	}
	if f.Pumps-1 >= r.Config.MinPumps {
		if prev, err := r.Tables.ProductionRange(side, f.Pumps-1); err == nil {
			bottom = min(bottom, prev.Min)
		}
	}
	return f.Production - bottom
}

// remainder returns an operating point that changes the production of side
// of c by exactly gap: within the current pump count's table range when
// possible, otherwise as a partial move into the neighbouring pump count.
func (r *run) remainder(c *model.Cell, side model.Side, gap int, dir Direction) (move, bool) {
	f := c.Facility(side)
	if dir == Increase {
		production := f.Production + gap
		if cur, err := r.Tables.ProductionRange(side, f.Pumps); err == nil && cur.Contains(production) {
			m := move{pumps: f.Pumps, production: production}
			if r.allowsIncrease(c, side, m) {
				return m, true
			}
		}
		if f.Pumps < model.MaxPumps {
			if next, err := r.Tables.ProductionRange(side, f.Pumps+1); err == nil && next.Contains(production) {
				m := move{pumps: f.Pumps + 1, production: production}
				if r.allowsIncrease(c, side, m) {
					return m, true
				}
			}
		}
		return move{}, false
	}

	production := f.Production - gap
	if cur, err := r.Tables.ProductionRange(side, f.Pumps); err == nil && cur.Contains(production) {
		m := move{pumps: f.Pumps, production: production}
		if r.allowsDecrease(c, side, m) {
			return m, true
		}
	}
	if f.Pumps-1 >= r.Config.MinPumps {
		if prev, err := r.Tables.ProductionRange(side, f.Pumps-1); err == nil && prev.Contains(production) {
			m := move{pumps: f.Pumps - 1, production: production}
			if r.allowsDecrease(c, side, m) {
				return m, true
			}
		}
	}
	return move{}, false
}
