package plan

import (
	"context"

	"github.com/kilianp07/pumpplan/core/model"
)

// Window is the row range [From, To) of one bi-month.
type Window struct {
	BioMonth int
	From     int
	To       int
}

// Windows locates the bi-month windows of the grid by scanning row dates.
// A bi-month without planned rows is omitted.
func (rc *RunContext) Windows() []Window {
	var out []Window
	for bm := 1; bm <= model.BioMonthCount; bm++ {
		w := Window{BioMonth: bm, From: -1}
		for d := 0; d < rc.Grid.Days(); d++ {
			if model.BioMonth(rc.Grid.Cell(d, 0).Month()) != bm {
				continue
			}
			if w.From < 0 {
				w.From = d
			}
			w.To = d + 1
		}
		if w.From >= 0 {
			out = append(out, w)
		}
	}
	return out
}

// bioMonthlyPass raises every two-month window to its minimum.
func (r *run) bioMonthlyPass(ctx context.Context) error {
	windows := r.Windows()
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.fillWindow(ctx, w); err != nil {
			return err
		}
		r.report(PassBioMonthly, i+1, len(windows))
	}
	return nil
}

func (r *run) fillWindow(ctx context.Context, w Window) error {
	need := r.limits[w.BioMonth].BioMonthly.Min
	if r.window[w.BioMonth] >= need {
		return nil
	}
	q := newQueue(r.RunContext, w.From, w.To, Increase)
	limit := ceiling(w.To - w.From)
	for steps := 0; r.window[w.BioMonth] < need; steps++ {
		if steps >= limit {
			return r.unreachable(PassBioMonthly, w.BioMonth, need, r.window[w.BioMonth], ErrIterationCeiling)
		}
		if steps%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cand, m, ok := q.pop()
		if !ok {
			return r.unreachable(PassBioMonthly, w.BioMonth, need, r.window[w.BioMonth], ErrNoCandidate)
		}
		c := r.Grid.Cell(cand.Day, cand.Hour)
		delta, err := r.apply(c, cand.Side, m)
		if err != nil {
			return err
		}
		q.touch(c)
		r.summary.Advances[PassBioMonthly]++
		r.trace(PassBioMonthly, c, cand.Side, delta)
	}
	return nil
}
