// Package calendar builds month grids for date pickers. All comparisons are
// made on calendar days in UTC; time of day is ignored.
package calendar

import "time"

// Options controls which days of the grid are selectable. Zero MinDate,
// MaxDate and Selected mean "unset"; a zero Today means the current date.
type Options struct {
	Today    time.Time
	MinDate  time.Time
	MaxDate  time.Time
	Selected time.Time
}

// now is swapped in tests.
var now = time.Now

func (o Options) today() time.Time {
	if o.Today.IsZero() {
		return now()
	}
	return o.Today
}

// Day is one cell of the grid.
type Day struct {
	Date     time.Time `json:"date"`
	Day      int       `json:"day"`
	Disabled bool      `json:"disabled"`
	Selected bool      `json:"selected"`
}

// Grid is a month laid out Sunday first, padded to whole weeks.
type Grid struct {
	Month          time.Time `json:"month"`
	Title          string    `json:"title"`
	LeadingBlanks  int       `json:"leading_blanks"`
	Days           []Day     `json:"days"`
	TrailingBlanks int       `json:"trailing_blanks"`

	opts Options
}

// NewGrid lays out the month containing month.
func NewGrid(month time.Time, opts Options) Grid {
	opts.Today = opts.today()
	first := firstOfMonth(month)
	g := Grid{
		Month:         first,
		Title:         first.Format("January 2006"),
		LeadingBlanks: int(first.Weekday()),
		opts:          opts,
	}
	n := DaysInMonth(first)
	g.Days = make([]Day, n)
	for i := range g.Days {
		date := first.AddDate(0, 0, i)
		g.Days[i] = Day{
			Date:     date,
			Day:      i + 1,
			Disabled: IsDateDisabled(date, opts),
			Selected: !opts.Selected.IsZero() && sameDay(date, opts.Selected),
		}
	}
	if rem := (g.LeadingBlanks + n) % 7; rem != 0 {
		g.TrailingBlanks = 7 - rem
	}
	return g
}

// Cells returns the total cell count, always a multiple of seven.
func (g Grid) Cells() int {
	return g.LeadingBlanks + len(g.Days) + g.TrailingBlanks
}

// Weeks splits the grid into rows of seven. Blank cells are nil.
func (g Grid) Weeks() [][]*Day {
	cells := make([]*Day, 0, g.Cells())
	for i := 0; i < g.LeadingBlanks; i++ {
		cells = append(cells, nil)
	}
	for i := range g.Days {
		cells = append(cells, &g.Days[i])
	}
	for i := 0; i < g.TrailingBlanks; i++ {
		cells = append(cells, nil)
	}
	weeks := make([][]*Day, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

// Prev returns the grid for the previous month with the same options.
func (g Grid) Prev() Grid {
	return NewGrid(g.Month.AddDate(0, -1, 0), g.opts)
}

// Next returns the grid for the following month with the same options.
func (g Grid) Next() Grid {
	return NewGrid(g.Month.AddDate(0, 1, 0), g.opts)
}

// IsDateDisabled reports whether date is before today, before MinDate or
// after MaxDate. The today check applies regardless of MinDate and MaxDate.
func IsDateDisabled(date time.Time, opts Options) bool {
	day := truncateDay(date)
	if day.Before(truncateDay(opts.today())) {
		return true
	}
	if !opts.MinDate.IsZero() && day.Before(truncateDay(opts.MinDate)) {
		return true
	}
	if !opts.MaxDate.IsZero() && day.After(truncateDay(opts.MaxDate)) {
		return true
	}
	return false
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return firstOfMonth(t).AddDate(0, 1, -1).Day()
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
