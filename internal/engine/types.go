// Package engine implements the month-by-month amortization simulation for
// construction-linked home loans: loans disbursed in tranches over time,
// subject to mid-tenure rate changes and optional extra principal payments,
// with the EMI recalculated whenever principal or rate changes.
package engine

import (
	"cloud.google.com/go/civil"
)

// LoanParameters holds the immutable inputs of one simulation.
type LoanParameters struct {
	// PrincipalApproved is the total sanctioned loan amount.
	PrincipalApproved float64 `json:"principalApproved"`
	// TenureYears is the contractual tenure; the loan end date is
	// StartDate plus TenureYears calendar years.
	TenureYears int `json:"tenureYears"`
	// InitialAnnualRate is the annual percentage rate in effect until the
	// first rate-change event, e.g. 8.5 meaning 8.5%.
	InitialAnnualRate float64 `json:"initialAnnualRate"`
	// StartDate is the calendar date the simulation begins.
	StartDate civil.Date `json:"startDate"`
	// TargetFullEMI is an optional minimum EMI the borrower elects to pay
	// from month one, even before full disbursal. Zero means the EMI is
	// purely the computed amortizing value.
	TargetFullEMI float64 `json:"targetFullEmi"`
}

// Disbursal is a partial release of the approved amount, increasing the
// outstanding principal.
type Disbursal struct {
	Date   civil.Date `json:"date"`
	Amount float64    `json:"amount"`
}

// RateChange replaces the active annual rate. If several fall in the same
// simulated month only the latest-dated one takes effect for that month.
type RateChange struct {
	Date civil.Date `json:"date"`
	Rate float64    `json:"rate"`
}

// ExtraPayment is a one-off principal reduction beyond the EMI's principal
// component.
type ExtraPayment struct {
	Date   civil.Date `json:"date"`
	Amount float64    `json:"amount"`
}

// Phase is a contiguous span of months during which the computed EMI is
// constant. A new phase begins whenever principal or rate changes; the
// EndDate of a phase equals the StartDate of the next one, and the last
// phase ends on the closure date.
type Phase struct {
	Index                 int        `json:"index"`
	StartDate             civil.Date `json:"startDate"`
	EndDate               civil.Date `json:"endDate"`
	PrincipalAtStart      float64    `json:"principalAtStart"`
	DisbursalAdded        float64    `json:"disbursalAdded"`
	RemainingTenureMonths int        `json:"remainingTenureMonths"`
	EMI                   float64    `json:"emi"`
	Rate                  float64    `json:"rate"`
}

// PaymentRow is one entry of the amortization schedule. Month counts
// calendar months since the start date, 1-indexed, and Date is the first
// day of that month's window.
type PaymentRow struct {
	Month            int        `json:"month"`
	Date             civil.Date `json:"date"`
	OpeningPrincipal float64    `json:"openingPrincipal"`
	EMI              float64    `json:"emi"`
	TheoreticalEMI   float64    `json:"theoreticalEmi"`
	Interest         float64    `json:"interest"`
	PrincipalPaid    float64    `json:"principalPaid"`
	ExtraPaid        float64    `json:"extraPaid"`
	ClosingPrincipal float64    `json:"closingPrincipal"`
	PhaseIndex       int        `json:"phaseIndex"`
	Rate             float64    `json:"rate"`
}

// Summary aggregates over the full schedule. ClosureDate is the window end
// of the terminating month.
type Summary struct {
	TotalInterest   float64    `json:"totalInterest"`
	TotalAmountPaid float64    `json:"totalAmountPaid"`
	TotalDisbursed  float64    `json:"totalDisbursed"`
	TotalExtraPaid  float64    `json:"totalExtraPaid"`
	ClosureDate     civil.Date `json:"closureDate"`
}

// Result holds the outcome of one simulation. CapReached reports that the
// iteration cap was hit before the loan closed, which indicates malformed
// input such as an EMI too small to cover interest.
type Result struct {
	Schedule   []PaymentRow `json:"schedule"`
	Phases     []Phase      `json:"phases"`
	Summary    Summary      `json:"summary"`
	CapReached bool         `json:"capReached"`
}
