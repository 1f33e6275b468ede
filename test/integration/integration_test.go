package integration

import (
	"math"
	"strings"
	"testing"

	"github.com/ledgerline/homeloan-forecast/internal/config"
	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/pkg/output"
	"github.com/ledgerline/homeloan-forecast/pkg/validation"
	"go.uber.org/zap"
)

// TestFullPipeline runs the application path end to end: load the config,
// parse and validate inputs, simulate, and render.
func TestFullPipeline(t *testing.T) {
	// Create a no-op logger to avoid debug output during testing
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	params, disbursals, rateChanges, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		t.Fatalf("SimulationInputs() error = %v", err)
	}

	if err := validation.ValidateSimulationInputs(params, disbursals, rateChanges, extraPayments); err != nil {
		t.Fatalf("ValidateSimulationInputs() error = %v", err)
	}
	if warnings := validation.SimulationWarnings(params, disbursals, rateChanges, extraPayments); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}

	result := engine.NewWithPolicy(logger, conf.AccrualPolicy()).Simulate(params, disbursals, rateChanges, extraPayments)

	if result.CapReached {
		t.Fatal("expected the loan to pay off")
	}
	if len(result.Schedule) == 0 {
		t.Fatal("expected a non-empty schedule")
	}
	// 20-year tenure; extra payments can only shorten it.
	if len(result.Schedule) > 241 {
		t.Errorf("schedule longer than the tenure allows: %d rows", len(result.Schedule))
	}

	// Three disbursal months and one rate-change month, with the first
	// disbursal opening the initial phase.
	if len(result.Phases) != 4 {
		t.Errorf("expected 4 phases, got %d", len(result.Phases))
	}

	if result.Summary.TotalDisbursed != 5000000 {
		t.Errorf("expected total disbursed 5000000, got %.2f", result.Summary.TotalDisbursed)
	}
	// One 300000 prepayment plus six monthly 25000 payments.
	if math.Abs(result.Summary.TotalExtraPaid-450000) > 0.01 {
		t.Errorf("expected total extra paid 450000, got %.2f", result.Summary.TotalExtraPaid)
	}

	final := result.Schedule[len(result.Schedule)-1]
	if math.Abs(final.ClosingPrincipal) > 0.01 {
		t.Errorf("expected final closing principal of zero, got %.6f", final.ClosingPrincipal)
	}
}

// TestScheduleInvariants checks the row-level identities every schedule must
// satisfy.
func TestScheduleInvariants(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	params, disbursals, rateChanges, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		t.Fatalf("SimulationInputs() error = %v", err)
	}

	result := engine.New(nil).Simulate(params, disbursals, rateChanges, extraPayments)

	var totalInterest float64
	for i, row := range result.Schedule {
		if row.ClosingPrincipal < -0.01 {
			t.Errorf("month %d: negative closing principal %.6f", row.Month, row.ClosingPrincipal)
		}
		if diff := row.OpeningPrincipal - row.PrincipalPaid - row.ExtraPaid - row.ClosingPrincipal; math.Abs(diff) > 1e-6 {
			t.Errorf("month %d: balance identity off by %.9f", row.Month, diff)
		}
		if diff := row.EMI - row.Interest - row.PrincipalPaid; math.Abs(diff) > 1e-6 {
			t.Errorf("month %d: EMI does not split into interest plus principal, off by %.9f", row.Month, diff)
		}
		if i > 0 {
			prev := result.Schedule[i-1]
			gap := row.OpeningPrincipal - prev.ClosingPrincipal
			// Any jump between months must be a disbursal, never a leak.
			if gap < -1e-6 {
				t.Errorf("month %d: opening principal below prior closing by %.9f", row.Month, -gap)
			}
		}
		totalInterest += row.Interest
	}
	if math.Abs(totalInterest-result.Summary.TotalInterest) > 0.01 {
		t.Errorf("summed interest %.2f does not match summary %.2f", totalInterest, result.Summary.TotalInterest)
	}
}

// TestCsvRendering checks the CSV output shape against the schedule.
func TestCsvRendering(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	params, disbursals, rateChanges, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		t.Fatalf("SimulationInputs() error = %v", err)
	}

	result := engine.New(nil).Simulate(params, disbursals, rateChanges, extraPayments)
	csv := output.CsvString(result)

	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(lines) != len(result.Schedule)+1 {
		t.Errorf("expected %d CSV lines, got %d", len(result.Schedule)+1, len(lines))
	}
	if !strings.HasPrefix(lines[0], `"month","date"`) {
		t.Errorf("unexpected CSV header: %s", lines[0])
	}
}
