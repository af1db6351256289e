package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pumpplan/core/grid"
	"github.com/kilianp07/pumpplan/core/logger"
	"github.com/kilianp07/pumpplan/core/metrics"
	"github.com/kilianp07/pumpplan/core/model"
	"github.com/kilianp07/pumpplan/core/reference"
	"github.com/kilianp07/pumpplan/test/util"
)

func defaultConfig() Config {
	return Config{BaselinePumps: 1, MinPumps: 0}
}

// newRun builds and initializes a grid for year without running any pass.
func newRun(t *testing.T, tables *reference.Tables, cfg Config, year int) *run {
	t.Helper()
	g, err := grid.NewBuilder(tables, cfg.FullLeapYear, nil).Build(year)
	require.NoError(t, err)
	rc, err := NewRunContext(g, tables, cfg)
	require.NoError(t, err)
	require.NoError(t, rc.Initialize())
	return &run{
		RunContext: rc,
		id:         "test",
		log:        logger.NopLogger{},
		rec:        metrics.NopRecorder{},
		summary:    newSummary(),
	}
}

func fixtureTables(mut func(*util.Fixture)) *reference.Tables {
	f := util.DefaultFixture()
	if mut != nil {
		mut(&f)
	}
	return util.Tables(f)
}

// assertGridInvariants checks pump and production bounds of every facility
// and the hourly cap of every cell.
func assertGridInvariants(t *testing.T, rc *RunContext) {
	t.Helper()
	rc.Grid.Each(func(c *model.Cell) {
		require.LessOrEqual(t, c.Production(), rc.HourlyCap(c), "day %d hour %d", c.Day, c.Hour)
		for _, side := range model.Sides {
			f := c.Facility(side)
			if f.Shutdown {
				require.Zero(t, f.Production)
				require.Zero(t, f.Pumps)
				require.Zero(t, f.Cost)
				continue
			}
			require.GreaterOrEqual(t, f.Pumps, rc.Config.MinPumps)
			require.LessOrEqual(t, f.Pumps, model.MaxPumps)
			r, err := rc.Tables.ProductionRange(side, f.Pumps)
			require.NoError(t, err)
			require.True(t, r.Contains(f.Production), "day %d hour %d %s: %d not in %v", c.Day, c.Hour, side, f.Production, r)
		}
	})
}
