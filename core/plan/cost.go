package plan

import "github.com/kilianp07/pumpplan/core/model"

// Cost returns the energy cost of one facility for one hour: specific energy
// times production times tariff. A shut down facility costs nothing.
func Cost(f model.FacilityState) float64 {
	if f.Shutdown {
		return 0
	}
	return f.SpecificEnergy * float64(f.Production) * f.TariffCost
}

// Recost refreshes the facility costs and the total cost of c.
func Recost(c *model.Cell) {
	total := 0.0
	for i := range c.Facilities {
		f := &c.Facilities[i]
		f.Cost = Cost(*f)
		total += f.Cost
	}
	c.TotalCost = total
}
