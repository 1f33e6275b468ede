package models

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/homeloan-forecast/internal/config"
	"github.com/ledgerline/homeloan-forecast/internal/engine"
)

func sampleCalculation(t *testing.T) *Calculation {
	t.Helper()
	start, err := civil.ParseDate("2024-01-01")
	require.NoError(t, err)
	rateDate, err := civil.ParseDate("2025-03-10")
	require.NoError(t, err)

	return &Calculation{
		Name:              "flat-7b",
		PrincipalApproved: decimal.RequireFromString("5000000"),
		TenureYears:       20,
		InterestRate:      decimal.RequireFromString("8.5"),
		StartDate:         start,
		TargetFullEMI:     decimal.RequireFromString("45000"),
		Accrual:           "dayWeighted",
		Disbursals: []DisbursalEvent{
			{Date: start, Amount: decimal.RequireFromString("2000000")},
		},
		RateChanges: []RateChangeEvent{
			{Date: rateDate, Rate: decimal.RequireFromString("9.05")},
		},
	}
}

func TestSimulationInputs(t *testing.T) {
	calc := sampleCalculation(t)

	params, disbursals, rateChanges, extras := calc.SimulationInputs()

	assert.Equal(t, 5000000.0, params.PrincipalApproved)
	assert.Equal(t, 20, params.TenureYears)
	assert.Equal(t, 8.5, params.InitialAnnualRate)
	assert.Equal(t, calc.StartDate, params.StartDate)
	assert.Equal(t, 45000.0, params.TargetFullEMI)
	require.Len(t, disbursals, 1)
	assert.Equal(t, 2000000.0, disbursals[0].Amount)
	require.Len(t, rateChanges, 1)
	assert.Equal(t, 9.05, rateChanges[0].Rate)
	assert.Empty(t, extras)
}

func TestAccrualPolicy(t *testing.T) {
	calc := sampleCalculation(t)
	assert.Equal(t, engine.AccrualDayWeighted, calc.AccrualPolicy())

	calc.Accrual = ""
	assert.Equal(t, engine.AccrualFlat, calc.AccrualPolicy())
}

func TestConfigurationRoundTrip(t *testing.T) {
	calc := sampleCalculation(t)

	conf := calc.ToConfiguration()
	assert.Equal(t, "flat-7b", conf.Loan.Name)
	assert.Equal(t, "2024-01-01", conf.Loan.StartDate)
	require.Len(t, conf.Disbursals, 1)
	assert.Equal(t, 2000000.0, conf.Disbursals[0].Amount)

	rebuilt, err := FromConfiguration(conf)
	require.NoError(t, err)
	assert.Equal(t, calc.Name, rebuilt.Name)
	assert.Equal(t, calc.StartDate, rebuilt.StartDate)
	assert.Equal(t, calc.TenureYears, rebuilt.TenureYears)
	assert.True(t, calc.PrincipalApproved.Equal(rebuilt.PrincipalApproved))
	require.Len(t, rebuilt.RateChanges, 1)
	assert.True(t, calc.RateChanges[0].Rate.Equal(rebuilt.RateChanges[0].Rate))
}

func TestFromConfigurationExpandsRecurring(t *testing.T) {
	conf := &config.Configuration{
		Loan: config.Loan{
			Name:              "recurring",
			PrincipalApproved: 1000000,
			TenureYears:       10,
			InterestRate:      9,
			StartDate:         "2024-01-01",
		},
		ExtraPayments: []config.ExtraPaymentEntry{
			{Amount: 10000, StartDate: "2024-07-01", EndDate: "2024-10-01"},
		},
	}

	calc, err := FromConfiguration(conf)
	require.NoError(t, err)
	assert.Len(t, calc.ExtraPayments, 4)
}
