// Package validation provides common validation utilities. The amortization
// engine assumes vetted inputs, so callers run these checks before invoking
// it.
package validation

import (
	"fmt"

	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/pkg/constants"
	"github.com/ledgerline/homeloan-forecast/pkg/datetime"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateSimulationInputs rejects inputs the engine does not handle:
// non-positive principal or tenure, negative rates or amounts.
func ValidateSimulationInputs(params engine.LoanParameters, disbursals []engine.Disbursal, rateChanges []engine.RateChange, extraPayments []engine.ExtraPayment) error {
	if params.PrincipalApproved <= 0 {
		return fmt.Errorf("principalApproved must be positive, got %.2f", params.PrincipalApproved)
	}
	if params.TenureYears <= 0 {
		return fmt.Errorf("tenureYears must be positive, got %d", params.TenureYears)
	}
	if params.InitialAnnualRate < 0 {
		return fmt.Errorf("interest rate must be non-negative, got %.4f", params.InitialAnnualRate)
	}
	if params.TargetFullEMI < 0 {
		return fmt.Errorf("targetFullEmi must be non-negative, got %.2f", params.TargetFullEMI)
	}
	for _, d := range disbursals {
		if d.Amount < 0 {
			return fmt.Errorf("disbursal on %s has negative amount %.2f", d.Date, d.Amount)
		}
	}
	for _, rc := range rateChanges {
		if rc.Rate < 0 {
			return fmt.Errorf("rate change on %s has negative rate %.4f", rc.Date, rc.Rate)
		}
	}
	for _, ep := range extraPayments {
		if ep.Amount < 0 {
			return fmt.Errorf("extra payment on %s has negative amount %.2f", ep.Date, ep.Amount)
		}
	}
	return nil
}

// SimulationWarnings returns non-fatal findings about the inputs.
func SimulationWarnings(params engine.LoanParameters, disbursals []engine.Disbursal, rateChanges []engine.RateChange, extraPayments []engine.ExtraPayment) []string {
	var warnings []string

	var totalDisbursed float64
	for _, d := range disbursals {
		totalDisbursed += d.Amount
	}
	if totalDisbursed > params.PrincipalApproved+constants.CurrencyTolerance {
		warnings = append(warnings, fmt.Sprintf("disbursals total %.2f exceeds the approved principal %.2f",
			totalDisbursed, params.PrincipalApproved))
	}
	if len(disbursals) == 0 {
		warnings = append(warnings, "no disbursals configured; the schedule will be empty")
	}

	loanEnd := datetime.AddMonths(params.StartDate, params.TenureYears*constants.MonthsPerYear)
	for _, d := range disbursals {
		if d.Date.After(loanEnd) {
			warnings = append(warnings, fmt.Sprintf("disbursal on %s falls after the loan end date %s", d.Date, loanEnd))
		}
	}
	for _, rc := range rateChanges {
		if rc.Date.After(loanEnd) {
			warnings = append(warnings, fmt.Sprintf("rate change on %s falls after the loan end date %s", rc.Date, loanEnd))
		}
	}
	for _, ep := range extraPayments {
		if ep.Date.After(loanEnd) {
			warnings = append(warnings, fmt.Sprintf("extra payment on %s falls after the loan end date %s", ep.Date, loanEnd))
		}
	}

	return warnings
}
