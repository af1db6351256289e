package plan

import (
	"context"
)

// dailyPass raises every day to its daily minimum. Days where the baseline
// already exceeds the hourly maximum in some hour are skipped.
func (r *run) dailyPass(ctx context.Context) error {
	days := r.Grid.Days()
	for d := 0; d < days; d++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.fillDay(d); err != nil {
			return err
		}
		r.report(PassDaily, d+1, days)
	}
	return nil
}

func (r *run) fillDay(d int) error {
	row := r.Grid.Row(d)
	l := r.limits[row[0].BioMonth]
	for h := range row {
		if row[h].Production() > l.Hourly.Max {
			r.summary.SkippedDays = append(r.summary.SkippedDays, row[0].Date)
			r.log.Warnf("run %s: skipping %s, hour %d produces %d above the hourly maximum %d",
				r.id, row[0].Date.Format("2006-01-02"), h, row[h].Production(), l.Hourly.Max)
			return nil
		}
	}
	limit := ceiling(1)
	for steps := 0; r.dayTotals[d] < l.Daily.Min; steps++ {
		if steps >= limit {
			return r.unreachable(PassDaily, d, l.Daily.Min, r.dayTotals[d], ErrIterationCeiling)
		}
		cand, m, ok := r.selectExtremal(d, d+1, Increase)
		if !ok {
			return r.unreachable(PassDaily, d, l.Daily.Min, r.dayTotals[d], ErrNoCandidate)
		}
		c := r.Grid.Cell(cand.Day, cand.Hour)
		delta, err := r.apply(c, cand.Side, m)
		if err != nil {
			return err
		}
		r.summary.Advances[PassDaily]++
		r.trace(PassDaily, c, cand.Side, delta)
	}
	return nil
}

func (r *run) unreachable(p Pass, unit, need, have int, cause error) error {
	return &UnreachableConstraintError{Pass: p, Unit: unit, Have: have, Need: need, Cause: cause}
}
