package integration

import (
	"os"
	"testing"
	"time"

	"github.com/ledgerline/homeloan-forecast/internal/config"
	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

// TestSimulationPerformance ensures a full 20-year schedule stays cheap
// enough to recompute on every API request.
func TestSimulationPerformance(t *testing.T) {
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	params, disbursals, rateChanges, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		t.Fatalf("SimulationInputs() error = %v", err)
	}

	eng := engine.New(logger)

	start := time.Now()
	const runs = 100
	for i := 0; i < runs; i++ {
		if result := eng.Simulate(params, disbursals, rateChanges, extraPayments); len(result.Schedule) == 0 {
			t.Fatal("expected a non-empty schedule")
		}
	}
	elapsed := time.Since(start)

	if perRun := elapsed / runs; perRun > 50*time.Millisecond {
		t.Errorf("simulation too slow: %v per run", perRun)
	}
}

// BenchmarkSimulate measures one full simulation from parsed inputs.
func BenchmarkSimulate(b *testing.B) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		b.Fatalf("LoadConfiguration() error = %v", err)
	}
	params, disbursals, rateChanges, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		b.Fatalf("SimulationInputs() error = %v", err)
	}

	eng := engine.New(zap.NewNop())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Simulate(params, disbursals, rateChanges, extraPayments)
	}
}
