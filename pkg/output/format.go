// Package output provides utilities for formatting and displaying
// amortization results.
package output

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerline/homeloan-forecast/internal/engine"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(name string, result *engine.Result) {
	p := message.NewPrinter(language.English)

	fmt.Printf("--- Amortization schedule for %s ---\n", name)
	fmt.Printf("Month | Date       | Opening        | EMI          | Interest     | Principal    | Extra        | Closing        | Rate\n")
	fmt.Printf("_____ | ____       | _______        | ___          | ________     | _________    | _____        | _______        | ____\n")
	for _, row := range result.Schedule {
		_, _ = p.Printf("%5d | %s | %14.2f | %12.2f | %12.2f | %12.2f | %12.2f | %14.2f | %.2f%%\n",
			row.Month, row.Date, row.OpeningPrincipal, row.EMI, row.Interest,
			row.PrincipalPaid, row.ExtraPaid, row.ClosingPrincipal, row.Rate)
	}

	fmt.Printf("\n--- Phases ---\n")
	for _, phase := range result.Phases {
		_, _ = p.Printf("phase %d: %s to %s, principal %.2f, EMI %.2f at %.2f%% over %d months\n",
			phase.Index, phase.StartDate, phase.EndDate, phase.PrincipalAtStart,
			phase.EMI, phase.Rate, phase.RemainingTenureMonths)
	}

	fmt.Printf("\n--- Summary ---\n")
	_, _ = p.Printf("total disbursed:   %.2f\n", result.Summary.TotalDisbursed)
	_, _ = p.Printf("total interest:    %.2f\n", result.Summary.TotalInterest)
	_, _ = p.Printf("total extra paid:  %.2f\n", result.Summary.TotalExtraPaid)
	_, _ = p.Printf("total amount paid: %.2f\n", result.Summary.TotalAmountPaid)
	fmt.Printf("closure date:      %s\n", result.Summary.ClosureDate)
	if result.CapReached {
		fmt.Printf("WARNING: the schedule hit the iteration cap; this loan configuration never pays off\n")
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *engine.Result) {
	fmt.Print(CsvString(result))
}

// CsvString renders the schedule in comma-separated value format.
func CsvString(result *engine.Result) string {
	var b strings.Builder
	b.WriteString(`"month","date","openingPrincipal","emi","theoreticalEmi","interest","principalPaid","extraPaid","closingPrincipal","phase","rate"` + "\n")
	for _, row := range result.Schedule {
		fmt.Fprintf(&b, `"%d","%s","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%d","%.4f"`+"\n",
			row.Month, row.Date, row.OpeningPrincipal, row.EMI, row.TheoreticalEMI,
			row.Interest, row.PrincipalPaid, row.ExtraPaid, row.ClosingPrincipal,
			row.PhaseIndex, row.Rate)
	}
	return b.String()
}
