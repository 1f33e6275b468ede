// Package emi provides the equated-monthly-installment math shared by the
// amortization engine and its callers.
package emi

import (
	"math"

	"github.com/ledgerline/homeloan-forecast/pkg/constants"
)

// Calculate returns the equated monthly installment that amortizes the given
// principal over termMonths at the given annual percentage rate, using the
// standard annuity formula. The zero-rate case is handled separately so the
// compound formula never divides by zero.
func Calculate(principal, annualRatePercent float64, termMonths int) float64 {
	if termMonths < 1 {
		termMonths = 1
	}
	if annualRatePercent == 0 {
		return principal / float64(termMonths)
	}

	periodicRate := annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.0+periodicRate, float64(termMonths))
	return principal * periodicRate * power / (power - 1.0)
}

// MonthlyInterest returns one month of interest on the given balance under
// the flat monthly-rate convention.
func MonthlyInterest(balance, annualRatePercent float64) float64 {
	return balance * annualRatePercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// RemainingTermMonths converts a remaining day span into a remaining tenure
// in months using the fixed day-per-month approximation, never dropping
// below one month.
func RemainingTermMonths(remainingDays int) int {
	months := int(math.Round(float64(remainingDays) / constants.DaysPerMonth))
	if months < 1 {
		return 1
	}
	return months
}
