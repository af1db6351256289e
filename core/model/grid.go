package model

import "time"

// Grid holds the hourly plan of a year, one row per day sorted by date.
// A Grid belongs to exactly one planning run.
type Grid struct {
	Year int      `json:"year"`
	Rows [][]Cell `json:"rows"`
}

// NewGrid allocates a grid of the given number of days starting on 1 January
// of year. Dates and hours are stamped; everything else is zero.
func NewGrid(year, days int) *Grid {
	g := &Grid{Year: year, Rows: make([][]Cell, days)}
	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d := range g.Rows {
		row := make([]Cell, HoursPerDay)
		for h := range row {
			row[h] = Cell{Date: date, Day: d, Hour: h}
		}
		g.Rows[d] = row
		date = date.AddDate(0, 0, 1)
	}
	return g
}

// Days returns the number of rows.
func (g *Grid) Days() int { return len(g.Rows) }

// Row returns the cells of day d.
func (g *Grid) Row(d int) []Cell { return g.Rows[d] }

// Cell returns the cell at day d and hour h.
func (g *Grid) Cell(d, h int) *Cell { return &g.Rows[d][h] }

// Each calls fn for every cell in date then hour order.
func (g *Grid) Each(fn func(c *Cell)) {
	for d := range g.Rows {
		for h := range g.Rows[d] {
			fn(&g.Rows[d][h])
		}
	}
}

// DayIndex returns the row holding date t, or false when t is not planned.
func (g *Grid) DayIndex(t time.Time) (int, bool) {
	if len(g.Rows) == 0 {
		return 0, false
	}
	start := g.Rows[0][0].Date
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	d := int(day.Sub(start).Hours() / 24)
	if d < 0 || d >= len(g.Rows) {
		return 0, false
	}
	return d, true
}

// TotalProduction sums the production of every facility.
func (g *Grid) TotalProduction() int {
	total := 0
	g.Each(func(c *Cell) { total += c.Production() })
	return total
}

// TotalCost sums the cost of every cell.
func (g *Grid) TotalCost() float64 {
	total := 0.0
	g.Each(func(c *Cell) { total += c.TotalCost })
	return total
}

// DaysIn returns the number of calendar days of year.
func DaysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}
