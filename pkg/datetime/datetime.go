// Package datetime provides calendar-date utility functions on civil.Date.
// Time of day is irrelevant everywhere in this application, so dates are
// carried as civil dates rather than time.Time values.
package datetime

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/ledgerline/homeloan-forecast/pkg/constants"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// ParseDate parses a YYYY-MM-DD date string into a civil.Date.
func ParseDate(s string) (civil.Date, error) {
	return civil.ParseDate(s)
}

// MustParseDate parses a date string and panics on error. This is intended
// for use in tests where the date string is known to be valid.
func MustParseDate(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// AddMonths returns the date offset by the given number of calendar months.
// Note that Go normalizes overflowing days, e.g. Jan 31 plus one month lands
// in early March; month windows therefore behave best with start days <= 28.
func AddMonths(d civil.Date, months int) civil.Date {
	return civil.DateOf(d.In(time.UTC).AddDate(0, months, 0))
}

// AddYears returns the date offset by the given number of calendar years.
func AddYears(d civil.Date, years int) civil.Date {
	return civil.DateOf(d.In(time.UTC).AddDate(years, 0, 0))
}

// DaysBetween returns the number of days from one date to another; negative
// when to precedes from.
func DaysBetween(from, to civil.Date) int {
	return to.DaysSince(from)
}

// Clamp returns d bounded below by min.
func Clamp(d, min civil.Date) civil.Date {
	if d.Before(min) {
		return min
	}
	return d
}
