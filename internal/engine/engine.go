package engine

import (
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/ledgerline/homeloan-forecast/pkg/constants"
	"github.com/ledgerline/homeloan-forecast/pkg/datetime"
	"github.com/ledgerline/homeloan-forecast/pkg/emi"
	"github.com/ledgerline/homeloan-forecast/pkg/mathutil"
)

// Engine computes amortization schedules. It holds no state across Simulate
// calls, so one Engine may be shared by concurrent callers.
type Engine struct {
	logger *zap.Logger
	policy AccrualPolicy
}

// New creates an Engine using the flat monthly-rate accrual policy.
func New(logger *zap.Logger) *Engine {
	return NewWithPolicy(logger, AccrualFlat)
}

// NewWithPolicy creates an Engine with an explicit accrual policy.
func NewWithPolicy(logger *zap.Logger, policy AccrualPolicy) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy != AccrualFlat && policy != AccrualDayWeighted {
		policy = AccrualFlat
	}
	return &Engine{logger: logger, policy: policy}
}

// simState is the mutable accumulator scoped to one Simulate call.
type simState struct {
	outstanding    float64
	rate           float64
	theoreticalEMI float64
	current        civil.Date
	loanEnd        civil.Date
	closure        civil.Date
	closed         bool

	totalInterest  float64
	totalPaid      float64
	totalDisbursed float64
	totalExtraPaid float64

	// Per-entry consumption tracking; the caller's slices are never mutated.
	disbConsumed  []bool
	rateConsumed  []bool
	extraConsumed []bool

	phases []Phase
}

func (st *simState) allDisbursed() bool {
	for _, used := range st.disbConsumed {
		if !used {
			return false
		}
	}
	return true
}

// openPhase closes the current phase at the new start date and appends the
// next one.
func (st *simState) openPhase(start civil.Date, disbursed float64, remainingMonths int, effectiveEMI float64) {
	if n := len(st.phases); n > 0 {
		st.phases[n-1].EndDate = start
	}
	st.phases = append(st.phases, Phase{
		Index:                 len(st.phases),
		StartDate:             start,
		PrincipalAtStart:      st.outstanding,
		DisbursalAdded:        disbursed,
		RemainingTenureMonths: remainingMonths,
		EMI:                   effectiveEMI,
		Rate:                  st.rate,
	})
}

func (st *simState) phase() *Phase {
	return &st.phases[len(st.phases)-1]
}

// Simulate runs the month-by-month amortization of a construction-linked
// loan. Event lists may arrive unsorted and may contain dates before the
// start date; those are treated as occurring in the first month. The engine
// performs no input validation beyond the no-disbursal no-op; upstream
// callers are responsible for rejecting non-positive principal, tenure, or
// rate (see pkg/validation).
func (e *Engine) Simulate(params LoanParameters, disbursals []Disbursal, rateChanges []RateChange, extraPayments []ExtraPayment) *Result {
	// With nothing to disburse no principal is ever outstanding and the
	// loan trivially never opens.
	if len(disbursals) == 0 {
		return &Result{Summary: Summary{ClosureDate: params.StartDate}}
	}

	disb := sortedDisbursals(disbursals)
	rates := sortedRateChanges(rateChanges)
	extras := sortedExtraPayments(extraPayments)

	st := &simState{
		rate:          params.InitialAnnualRate,
		current:       params.StartDate,
		loanEnd:       datetime.AddMonths(params.StartDate, params.TenureYears*constants.MonthsPerYear),
		disbConsumed:  make([]bool, len(disb)),
		rateConsumed:  make([]bool, len(rates)),
		extraConsumed: make([]bool, len(extras)),
	}

	result := &Result{}

	for month := 1; month <= constants.MaxScheduleMonths; month++ {
		windowStart := st.current
		windowEnd := datetime.AddMonths(windowStart, 1)

		// Rate changes: every unconsumed change dated in the window is
		// consumed, superseded ones included; the latest-dated one wins.
		priorRate := st.rate
		var matchedRates []RateChange
		for i, rc := range rates {
			if !st.rateConsumed[i] && rc.Date.Before(windowEnd) {
				st.rateConsumed[i] = true
				matchedRates = append(matchedRates, rc)
			}
		}
		if len(matchedRates) > 0 {
			st.rate = matchedRates[len(matchedRates)-1].Rate
		}

		// Disbursals: sum every unconsumed tranche dated in the window
		// into the outstanding principal.
		priorPrincipal := st.outstanding
		var matchedDisb []Disbursal
		var disbursedNow float64
		for i, d := range disb {
			if !st.disbConsumed[i] && d.Date.Before(windowEnd) {
				st.disbConsumed[i] = true
				matchedDisb = append(matchedDisb, d)
				disbursedNow += d.Amount
			}
		}
		st.outstanding += disbursedNow
		st.totalDisbursed += disbursedNow

		// Any principal or rate change re-bases the EMI over the remaining
		// tenure and opens a new phase. Extra payments deliberately do
		// not: they keep the phase EMI and shorten the tenure instead.
		if len(matchedRates) > 0 || len(matchedDisb) > 0 {
			remaining := emi.RemainingTermMonths(datetime.DaysBetween(windowStart, st.loanEnd))
			computed := emi.Calculate(st.outstanding, st.rate, remaining)
			st.theoreticalEMI = computed
			effective := mathutil.Max(computed, params.TargetFullEMI)
			st.openPhase(windowStart, disbursedNow, remaining, effective)
			e.logger.Debug(fmt.Sprintf("%s: phase %d opened with EMI %.2f at %.2f%% over %d months",
				windowStart, len(st.phases)-1, effective, st.rate, remaining),
				zap.String("op", "engine.Simulate"),
			)
		}

		// The loan closes before interest is charged for the month, so
		// the terminal month produces no row.
		if st.totalDisbursed > 0 && st.allDisbursed() && mathutil.IsZero(st.outstanding) {
			st.closed = true
			st.closure = windowStart
			break
		}

		// Nothing outstanding yet (tranches still pending): no payment
		// activity, but the calendar keeps moving.
		if st.outstanding <= constants.CurrencyTolerance {
			st.current = windowEnd
			continue
		}

		interest := e.accrueInterest(windowStart, windowEnd, priorPrincipal, priorRate, st.outstanding, st.rate, matchedDisb, matchedRates)

		phase := st.phase()
		emiToPay := mathutil.Max(phase.EMI, params.TargetFullEMI)
		principalPaid := mathutil.Max(0, emiToPay-interest)

		var extraPaid float64
		for i, ep := range extras {
			if !st.extraConsumed[i] && ep.Date.Before(windowEnd) {
				st.extraConsumed[i] = true
				extraPaid += ep.Amount
			}
		}

		// The combined reduction never exceeds the balance: the extra
		// payment gives way first, then scheduled principal, and the
		// recorded EMI reflects the true final payment.
		if principalPaid+extraPaid > st.outstanding {
			extraPaid = mathutil.Max(0, st.outstanding-principalPaid)
			principalPaid = mathutil.Min(principalPaid, st.outstanding)
			emiToPay = principalPaid + interest
		}

		row := PaymentRow{
			Month:            month,
			Date:             windowStart,
			OpeningPrincipal: st.outstanding,
			EMI:              emiToPay,
			TheoreticalEMI:   st.theoreticalEMI,
			Interest:         interest,
			PrincipalPaid:    principalPaid,
			ExtraPaid:        extraPaid,
			ClosingPrincipal: st.outstanding - principalPaid - extraPaid,
			PhaseIndex:       phase.Index,
			Rate:             st.rate,
		}
		result.Schedule = append(result.Schedule, row)

		st.totalInterest += interest
		st.totalPaid += emiToPay + extraPaid
		st.totalExtraPaid += extraPaid
		st.outstanding = row.ClosingPrincipal
		st.current = windowEnd

		// Fresh theoretical baseline for next month's row; the balance
		// moved even when no event occurred.
		if st.outstanding > constants.CurrencyTolerance {
			remaining := emi.RemainingTermMonths(datetime.DaysBetween(windowEnd, st.loanEnd))
			st.theoreticalEMI = emi.Calculate(st.outstanding, st.rate, remaining)
		}
	}

	if !st.closed {
		st.closure = st.current
		result.CapReached = true
		e.logger.Warn(fmt.Sprintf("schedule reached the %d-month cap without closing; the loan configuration never pays off",
			constants.MaxScheduleMonths),
			zap.String("op", "engine.Simulate"),
		)
	}

	if n := len(st.phases); n > 0 {
		st.phases[n-1].EndDate = st.closure
	}

	result.Phases = st.phases
	result.Summary = Summary{
		TotalInterest:   st.totalInterest,
		TotalAmountPaid: st.totalPaid,
		TotalDisbursed:  st.totalDisbursed,
		TotalExtraPaid:  st.totalExtraPaid,
		ClosureDate:     st.closure,
	}
	return result
}

func sortedDisbursals(in []Disbursal) []Disbursal {
	out := append([]Disbursal(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortedRateChanges(in []RateChange) []RateChange {
	out := append([]RateChange(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortedExtraPayments(in []ExtraPayment) []ExtraPayment {
	out := append([]ExtraPayment(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
