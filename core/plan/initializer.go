package plan

import (
	"fmt"

	"github.com/kilianp07/pumpplan/core/model"
)

// Initialize puts every running facility at the configured baseline pump
// count and the production-table maximum for it, loads prices and energy
// limits for the cell's month and band, and costs every cell.
func (rc *RunContext) Initialize() error {
	var err error
	rc.Grid.Each(func(c *model.Cell) {
		if err != nil {
			return
		}
		if e := rc.initCell(c); e != nil {
			err = fmt.Errorf("initialize %s hour %d: %w", c.Date.Format("2006-01-02"), c.Hour, e)
		}
	})
	if err != nil {
		return err
	}
	rc.retotal()
	return nil
}

func (rc *RunContext) initCell(c *model.Cell) error {
	cl, err := rc.Tables.CostLimitFor(c.Month(), c.Band)
	if err != nil {
		return err
	}
	baseline := rc.Config.BaselinePumps
	for _, side := range model.Sides {
		f := c.Facility(side)
		if f.Shutdown {
			continue
		}
		r, err := rc.Tables.ProductionRange(side, baseline)
		if err != nil {
			return err
		}
		se, err := rc.Tables.SpecificEnergyFor(side, c.Month(), baseline)
		if err != nil {
			return err
		}
		*f = model.FacilityState{
			Production:          r.Max,
			Pumps:               baseline,
			SpecificEnergy:      se,
			TariffCost:          cl.TariffCost,
			SecondaryTariffCost: cl.SecondaryTariffCost,
			EnergyLimit:         cl.EnergyLimit,
		}
	}
	Recost(c)
	return nil
}
