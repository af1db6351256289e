package model

import "time"

// MaxPumps is the number of pumps installed at each facility.
const MaxPumps = 5

// HoursPerDay is the number of cells in a grid row.
const HoursPerDay = 24

// FacilityState is the operating point of one facility during one hour.
type FacilityState struct {
	Production          int     `json:"production_amount"` // cubic meters produced in the hour
	Pumps               int     `json:"pump_count"`
	SpecificEnergy      float64 `json:"specific_energy"` // kWh per cubic meter
	TariffCost          float64 `json:"tariff_cost"`     // price per kWh
	SecondaryTariffCost float64 `json:"secondary_tariff_cost"`
	EnergyLimit         int     `json:"energy_limit"` // kWh allowed in the hour, 0 means unlimited
	Shutdown            bool    `json:"shutdown"`
	Cost                float64 `json:"production_cost"`
}

// Energy returns the energy consumed in the hour.
func (f FacilityState) Energy() float64 {
	if f.Shutdown {
		return 0
	}
	return f.SpecificEnergy * float64(f.Production)
}

// Cell is one hour of one day with both facilities.
type Cell struct {
	Date       time.Time        `json:"date"`
	Day        int              `json:"day"` // zero-based row index
	Hour       int              `json:"hour"`
	Season     Season           `json:"season"`
	DayType    DayType          `json:"day_type"`
	BioMonth   int              `json:"bio_month"`
	Band       TariffBand       `json:"band"`
	Facilities [2]FacilityState `json:"facilities"`
	TotalCost  float64          `json:"total_cost"`
}

// Facility returns a pointer to the state of side s.
func (c *Cell) Facility(s Side) *FacilityState { return &c.Facilities[s] }

// Production returns the combined production of both facilities.
func (c *Cell) Production() int {
	return c.Facilities[North].Production + c.Facilities[South].Production
}

// Energy returns the combined energy consumption of both facilities.
func (c *Cell) Energy() float64 {
	return c.Facilities[North].Energy() + c.Facilities[South].Energy()
}

// Month returns the calendar month of the cell.
func (c *Cell) Month() time.Month { return c.Date.Month() }
