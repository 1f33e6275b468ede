// Package events provides recurring event expansion utilities.
package events

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/ledgerline/homeloan-forecast/pkg/constants"
	"github.com/ledgerline/homeloan-forecast/pkg/datetime"
)

// Recurring describes a payment that repeats on a fixed month frequency
// between two dates.
type Recurring struct {
	Amount    float64
	StartDate string
	EndDate   string
	Frequency int // months
}

// ExpandDates returns every date on which the recurring payment occurs, from
// StartDate through EndDate inclusive. An unspecified EndDate falls back to
// the provided horizon and an unspecified Frequency defaults to monthly.
func (r *Recurring) ExpandDates(horizon civil.Date) ([]civil.Date, error) {
	if r.StartDate == "" {
		return nil, fmt.Errorf("recurring payment is missing a startDate")
	}
	start, err := datetime.ParseDate(r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid recurring payment startDate %q: %w", r.StartDate, err)
	}

	end := horizon
	if r.EndDate != "" {
		end, err = datetime.ParseDate(r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid recurring payment endDate %q: %w", r.EndDate, err)
		}
	}

	frequency := r.Frequency
	if frequency <= 0 {
		frequency = constants.DefaultFrequency
	}

	dates := []civil.Date{start}
	for {
		next := datetime.AddMonths(dates[len(dates)-1], frequency)
		if next.After(end) {
			break
		}
		dates = append(dates, next)
	}
	return dates, nil
}
