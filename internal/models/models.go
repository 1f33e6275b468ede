// Package models defines the persisted shape of a named calculation. Amounts
// and rates are carried as decimals so stored records round-trip losslessly:
// a reloaded calculation reproduces an identical schedule when re-run.
package models

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/homeloan-forecast/internal/config"
	"github.com/ledgerline/homeloan-forecast/internal/engine"
)

// Calculation is one saved loan calculation, keyed by a user-assigned name.
type Calculation struct {
	ID                uuid.UUID           `json:"id"`
	Name              string              `json:"name"`
	PrincipalApproved decimal.Decimal     `json:"principalApproved"`
	TenureYears       int                 `json:"tenureYears"`
	InterestRate      decimal.Decimal     `json:"interestRate"`
	StartDate         civil.Date          `json:"startDate"`
	TargetFullEMI     decimal.Decimal     `json:"targetFullEmi"`
	Accrual           string              `json:"accrual,omitempty"` // flat, dayWeighted
	Disbursals        []DisbursalEvent    `json:"disbursals"`
	RateChanges       []RateChangeEvent   `json:"rateChanges"`
	ExtraPayments     []ExtraPaymentEvent `json:"extraPayments"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// DisbursalEvent is one stored tranche release.
type DisbursalEvent struct {
	Date   civil.Date      `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// RateChangeEvent is one stored interest-rate revision.
type RateChangeEvent struct {
	Date civil.Date      `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// ExtraPaymentEvent is one stored prepayment.
type ExtraPaymentEvent struct {
	Date   civil.Date      `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// SimulationInputs converts the stored record into engine inputs, each event
// list sorted ascending by date.
func (c *Calculation) SimulationInputs() (engine.LoanParameters, []engine.Disbursal, []engine.RateChange, []engine.ExtraPayment) {
	params := engine.LoanParameters{
		PrincipalApproved: c.PrincipalApproved.InexactFloat64(),
		TenureYears:       c.TenureYears,
		InitialAnnualRate: c.InterestRate.InexactFloat64(),
		StartDate:         c.StartDate,
		TargetFullEMI:     c.TargetFullEMI.InexactFloat64(),
	}

	disbursals := make([]engine.Disbursal, 0, len(c.Disbursals))
	for _, d := range c.Disbursals {
		disbursals = append(disbursals, engine.Disbursal{Date: d.Date, Amount: d.Amount.InexactFloat64()})
	}
	rateChanges := make([]engine.RateChange, 0, len(c.RateChanges))
	for _, rc := range c.RateChanges {
		rateChanges = append(rateChanges, engine.RateChange{Date: rc.Date, Rate: rc.Rate.InexactFloat64()})
	}
	extraPayments := make([]engine.ExtraPayment, 0, len(c.ExtraPayments))
	for _, ep := range c.ExtraPayments {
		extraPayments = append(extraPayments, engine.ExtraPayment{Date: ep.Date, Amount: ep.Amount.InexactFloat64()})
	}

	sort.SliceStable(disbursals, func(i, j int) bool { return disbursals[i].Date.Before(disbursals[j].Date) })
	sort.SliceStable(rateChanges, func(i, j int) bool { return rateChanges[i].Date.Before(rateChanges[j].Date) })
	sort.SliceStable(extraPayments, func(i, j int) bool { return extraPayments[i].Date.Before(extraPayments[j].Date) })

	return params, disbursals, rateChanges, extraPayments
}

// AccrualPolicy returns the engine accrual policy selected by the record.
func (c *Calculation) AccrualPolicy() engine.AccrualPolicy {
	return engine.ParseAccrualPolicy(c.Accrual)
}

// ToConfiguration renders the record back into the YAML config shape used by
// the CLI, for the export endpoint.
func (c *Calculation) ToConfiguration() *config.Configuration {
	conf := &config.Configuration{
		Loan: config.Loan{
			Name:              c.Name,
			PrincipalApproved: c.PrincipalApproved.InexactFloat64(),
			TenureYears:       c.TenureYears,
			InterestRate:      c.InterestRate.InexactFloat64(),
			StartDate:         c.StartDate.String(),
			TargetFullEmi:     c.TargetFullEMI.InexactFloat64(),
			Accrual:           c.Accrual,
		},
	}
	for _, d := range c.Disbursals {
		conf.Disbursals = append(conf.Disbursals, config.DisbursalEntry{
			Date:   d.Date.String(),
			Amount: d.Amount.InexactFloat64(),
		})
	}
	for _, rc := range c.RateChanges {
		conf.RateChanges = append(conf.RateChanges, config.RateChangeEntry{
			Date: rc.Date.String(),
			Rate: rc.Rate.InexactFloat64(),
		})
	}
	for _, ep := range c.ExtraPayments {
		conf.ExtraPayments = append(conf.ExtraPayments, config.ExtraPaymentEntry{
			Date:   ep.Date.String(),
			Amount: ep.Amount.InexactFloat64(),
		})
	}
	return conf
}

// FromConfiguration builds an unsaved record from a parsed config file.
func FromConfiguration(conf *config.Configuration) (*Calculation, error) {
	startDate, err := civil.ParseDate(conf.Loan.StartDate)
	if err != nil {
		return nil, err
	}

	calc := &Calculation{
		ID:                uuid.New(),
		Name:              conf.Loan.Name,
		PrincipalApproved: decimal.NewFromFloat(conf.Loan.PrincipalApproved),
		TenureYears:       conf.Loan.TenureYears,
		InterestRate:      decimal.NewFromFloat(conf.Loan.InterestRate),
		StartDate:         startDate,
		TargetFullEMI:     decimal.NewFromFloat(conf.Loan.TargetFullEmi),
		Accrual:           conf.Loan.Accrual,
	}

	for _, entry := range conf.Disbursals {
		date, err := civil.ParseDate(entry.Date)
		if err != nil {
			return nil, err
		}
		calc.Disbursals = append(calc.Disbursals, DisbursalEvent{Date: date, Amount: decimal.NewFromFloat(entry.Amount)})
	}
	for _, entry := range conf.RateChanges {
		date, err := civil.ParseDate(entry.Date)
		if err != nil {
			return nil, err
		}
		calc.RateChanges = append(calc.RateChanges, RateChangeEvent{Date: date, Rate: decimal.NewFromFloat(entry.Rate)})
	}

	// Recurring entries are expanded so the stored record is explicit.
	_, _, _, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		return nil, err
	}
	for _, ep := range extraPayments {
		calc.ExtraPayments = append(calc.ExtraPayments, ExtraPaymentEvent{Date: ep.Date, Amount: decimal.NewFromFloat(ep.Amount)})
	}

	return calc, nil
}
