package engine

import (
	"sort"

	"cloud.google.com/go/civil"

	"github.com/ledgerline/homeloan-forecast/pkg/constants"
	"github.com/ledgerline/homeloan-forecast/pkg/datetime"
	"github.com/ledgerline/homeloan-forecast/pkg/emi"
)

// AccrualPolicy selects how interest is charged within a month. A policy
// applies to the whole simulation; the two conventions are never mixed.
type AccrualPolicy string

const (
	// AccrualFlat charges one month of interest on the opening balance,
	// with no day-weighting inside the month. This is the baseline.
	AccrualFlat AccrualPolicy = constants.AccrualPolicyFlat

	// AccrualDayWeighted sub-divides the month at in-window disbursal and
	// rate-change dates and charges per-day interest on the balance and
	// rate effective in each sub-interval, on a 365-day basis.
	AccrualDayWeighted AccrualPolicy = constants.AccrualPolicyDayWeighted
)

// ParseAccrualPolicy maps a config string to a policy, defaulting to flat.
func ParseAccrualPolicy(s string) AccrualPolicy {
	if s == constants.AccrualPolicyDayWeighted {
		return AccrualDayWeighted
	}
	return AccrualFlat
}

// accrualEvent is one principal or rate transition inside a month window.
type accrualEvent struct {
	date       civil.Date
	amount     float64
	rate       float64
	rateChange bool
}

// accrueInterest computes the interest charged for one month window.
// priorPrincipal and priorRate are the values in force before this month's
// events; outstanding and rate already include them.
func (e *Engine) accrueInterest(windowStart, windowEnd civil.Date, priorPrincipal, priorRate, outstanding, rate float64, disbursed []Disbursal, rateChanged []RateChange) float64 {
	if e.policy == AccrualFlat {
		return emi.MonthlyInterest(outstanding, rate)
	}
	return dayWeightedInterest(windowStart, windowEnd, priorPrincipal, priorRate, disbursed, rateChanged)
}

func dayWeightedInterest(windowStart, windowEnd civil.Date, principal, rate float64, disbursed []Disbursal, rateChanged []RateChange) float64 {
	events := make([]accrualEvent, 0, len(disbursed)+len(rateChanged))
	for _, d := range disbursed {
		events = append(events, accrualEvent{date: datetime.Clamp(d.Date, windowStart), amount: d.Amount})
	}
	for _, rc := range rateChanged {
		events = append(events, accrualEvent{date: datetime.Clamp(rc.Date, windowStart), rate: rc.Rate, rateChange: true})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })

	var interest float64
	cursor := windowStart
	for _, ev := range events {
		if days := datetime.DaysBetween(cursor, ev.date); days > 0 {
			interest += principal * rate / constants.PercentageMultiplier * float64(days) / constants.DaysPerYear
			cursor = ev.date
		}
		if ev.rateChange {
			rate = ev.rate
		} else {
			principal += ev.amount
		}
	}
	if days := datetime.DaysBetween(cursor, windowEnd); days > 0 {
		interest += principal * rate / constants.PercentageMultiplier * float64(days) / constants.DaysPerYear
	}
	return interest
}
