package store

import (
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func sampleCalculation(t *testing.T, name string) *models.Calculation {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Calculation{
		ID:                uuid.New(),
		Name:              name,
		PrincipalApproved: decimal.RequireFromString("5000000"),
		TenureYears:       20,
		InterestRate:      decimal.RequireFromString("8.5"),
		StartDate:         mustDate(t, "2024-01-01"),
		TargetFullEMI:     decimal.RequireFromString("45000"),
		Accrual:           "flat",
		Disbursals: []models.DisbursalEvent{
			{Date: mustDate(t, "2024-01-01"), Amount: decimal.RequireFromString("2000000")},
			{Date: mustDate(t, "2024-06-01"), Amount: decimal.RequireFromString("1500000")},
		},
		RateChanges: []models.RateChangeEvent{
			{Date: mustDate(t, "2025-03-10"), Rate: decimal.RequireFromString("9.05")},
		},
		ExtraPayments: []models.ExtraPaymentEvent{
			{Date: mustDate(t, "2026-01-15"), Amount: decimal.RequireFromString("200000")},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCreateAndGetCalculation(t *testing.T) {
	s := newTestStore(t)

	calc := sampleCalculation(t, "flat-7b")
	require.NoError(t, s.CreateCalculation(calc))

	loaded, err := s.GetCalculation(calc.ID)
	require.NoError(t, err)

	assert.Equal(t, calc.ID, loaded.ID)
	assert.Equal(t, calc.Name, loaded.Name)
	assert.True(t, calc.PrincipalApproved.Equal(loaded.PrincipalApproved))
	assert.Equal(t, calc.TenureYears, loaded.TenureYears)
	assert.True(t, calc.InterestRate.Equal(loaded.InterestRate))
	assert.Equal(t, calc.StartDate, loaded.StartDate)
	assert.True(t, calc.TargetFullEMI.Equal(loaded.TargetFullEMI))
	assert.Equal(t, calc.Accrual, loaded.Accrual)
	require.Len(t, loaded.Disbursals, 2)
	assert.True(t, calc.Disbursals[0].Amount.Equal(loaded.Disbursals[0].Amount))
	assert.Equal(t, calc.Disbursals[1].Date, loaded.Disbursals[1].Date)
	require.Len(t, loaded.RateChanges, 1)
	assert.True(t, calc.RateChanges[0].Rate.Equal(loaded.RateChanges[0].Rate))
	require.Len(t, loaded.ExtraPayments, 1)
}

func TestGetCalculationByName(t *testing.T) {
	s := newTestStore(t)

	calc := sampleCalculation(t, "flat-7b")
	require.NoError(t, s.CreateCalculation(calc))

	loaded, err := s.GetCalculationByName("flat-7b")
	require.NoError(t, err)
	assert.Equal(t, calc.ID, loaded.ID)

	_, err = s.GetCalculationByName("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCalculationNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetCalculation(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCalculationDuplicateName(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.CreateCalculation(sampleCalculation(t, "flat-7b")))
	err := s.CreateCalculation(sampleCalculation(t, "flat-7b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestUpdateCalculation(t *testing.T) {
	s := newTestStore(t)

	calc := sampleCalculation(t, "flat-7b")
	require.NoError(t, s.CreateCalculation(calc))

	calc.Name = "flat-7b-revised"
	calc.InterestRate = decimal.RequireFromString("9.25")
	calc.RateChanges = nil
	calc.ExtraPayments = append(calc.ExtraPayments, models.ExtraPaymentEvent{
		Date:   mustDate(t, "2027-01-15"),
		Amount: decimal.RequireFromString("300000"),
	})
	require.NoError(t, s.UpdateCalculation(calc))

	loaded, err := s.GetCalculation(calc.ID)
	require.NoError(t, err)
	assert.Equal(t, "flat-7b-revised", loaded.Name)
	assert.True(t, loaded.InterestRate.Equal(decimal.RequireFromString("9.25")))
	assert.Empty(t, loaded.RateChanges)
	assert.Len(t, loaded.ExtraPayments, 2)
}

func TestUpdateCalculationNotFound(t *testing.T) {
	s := newTestStore(t)

	calc := sampleCalculation(t, "ghost")
	assert.ErrorIs(t, s.UpdateCalculation(calc), ErrNotFound)
}

func TestDeleteCalculation(t *testing.T) {
	s := newTestStore(t)

	calc := sampleCalculation(t, "flat-7b")
	require.NoError(t, s.CreateCalculation(calc))
	require.NoError(t, s.DeleteCalculation(calc.ID))

	_, err := s.GetCalculation(calc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteCalculation(calc.ID), ErrNotFound)
}

func TestListCalculations(t *testing.T) {
	s := newTestStore(t)

	calcs, err := s.ListCalculations()
	require.NoError(t, err)
	assert.Empty(t, calcs)

	require.NoError(t, s.CreateCalculation(sampleCalculation(t, "zeta")))
	require.NoError(t, s.CreateCalculation(sampleCalculation(t, "alpha")))

	calcs, err = s.ListCalculations()
	require.NoError(t, err)
	require.Len(t, calcs, 2)
	assert.Equal(t, "alpha", calcs[0].Name)
	assert.Equal(t, "zeta", calcs[1].Name)
	assert.Len(t, calcs[0].Disbursals, 2)
}

func TestReloadedCalculationReproducesSchedule(t *testing.T) {
	s := newTestStore(t)

	calc := sampleCalculation(t, "flat-7b")
	require.NoError(t, s.CreateCalculation(calc))

	loaded, err := s.GetCalculation(calc.ID)
	require.NoError(t, err)

	eng := engine.New(nil)
	params, disbursals, rateChanges, extras := calc.SimulationInputs()
	original := eng.Simulate(params, disbursals, rateChanges, extras)

	params, disbursals, rateChanges, extras = loaded.SimulationInputs()
	reloaded := eng.Simulate(params, disbursals, rateChanges, extras)

	assert.Equal(t, original, reloaded)
}
