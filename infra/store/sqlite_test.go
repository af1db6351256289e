package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/plan"
)

func testResult(id string, year int, started time.Time) *plan.Result {
	g := model.NewGrid(year, 3)
	for d := 0; d < g.Days(); d++ {
		for h := 0; h < model.HoursPerDay; h++ {
			c := g.Cell(d, h)
			c.Band = model.BandMid
			n := c.Facility(model.North)
			n.Pumps, n.Production, n.SpecificEnergy, n.TariffCost = 1, 100, 3.5, 0.2
			n.Cost = plan.Cost(*n)
		}
	}
	g.Cell(1, 4).Facility(model.South).Shutdown = true
	return &plan.Result{
		RunID:     id,
		Year:      year,
		Target:    7200,
		StartedAt: started,
		Grid:      g,
		Summary: plan.Summary{
			FinalProduction: g.TotalProduction(),
			TotalCost:       g.TotalCost(),
			BandProduction:  map[model.TariffBand]int{model.BandMid: 7200},
			Advances:        map[plan.Pass]int{plan.PassDaily: 4},
			Status:          plan.StatusSucceeded,
			Duration:        1500 * time.Millisecond,
		},
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	started := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testResult("a", 2024, started)))

	r, err := s.GetRun(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2024, r.Year)
	assert.Equal(t, plan.StatusSucceeded, r.Status)
	assert.Equal(t, started, r.StartedAt)
	assert.Equal(t, 1500*time.Millisecond, r.Duration)
	assert.Equal(t, 7200, r.FinalProduction)
	assert.Equal(t, 7200, r.Summary.BandProduction[model.BandMid])
	assert.Equal(t, 4, r.Summary.Advances[plan.PassDaily])

	cells, err := s.Cells(ctx, "a", 1, 2)
	require.NoError(t, err)
	require.Len(t, cells, model.HoursPerDay*2)
	assert.Equal(t, "north", cells[0].Side)
	assert.Equal(t, "south", cells[1].Side)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), cells[0].Date)
	assert.Equal(t, "MID", cells[0].Band)
	assert.InDelta(t, 70.0, cells[0].Cost, 1e-9)
	assert.True(t, cells[9].Shutdown, "south at hour 4")

	all, err := s.Cells(ctx, "a", 0, -1)
	require.NoError(t, err)
	assert.Len(t, all, 3*model.HoursPerDay*2)
}

func TestSQLiteStoreListAndReplace(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, testResult("a", 2024, base)))
	require.NoError(t, s.SaveRun(ctx, testResult("b", 2025, base.Add(time.Hour))))
	require.NoError(t, s.SaveRun(ctx, testResult("c", 2024, base.Add(2*time.Hour))))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "c", runs[0].ID)

	runs, err = s.ListRuns(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	res := testResult("a", 2024, base)
	res.Summary.Status = plan.StatusFailed
	res.Summary.FailedPass = plan.PassYearly
	res.Summary.Error = "stuck"
	require.NoError(t, s.SaveRun(ctx, res))
	r, err := s.GetRun(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, plan.StatusFailed, r.Status)
	assert.Equal(t, plan.PassYearly, r.FailedPass)
	assert.Equal(t, "stuck", r.Error)
	cells, err := s.Cells(ctx, "a", 0, -1)
	require.NoError(t, err)
	assert.Len(t, cells, 3*model.HoursPerDay*2)
}

func TestSQLiteStoreNotFound(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Cells(context.Background(), "missing", 0, -1)
	assert.ErrorIs(t, err, ErrNotFound)
}
