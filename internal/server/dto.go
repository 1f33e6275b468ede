package server

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/internal/models"
)

// CalculationRequest is the JSON body for creating, updating, or simulating
// a calculation. Amounts and rates are decimals so the stored record keeps
// the exact values the caller sent.
type CalculationRequest struct {
	Name              string            `json:"name"`
	PrincipalApproved decimal.Decimal   `json:"principalApproved"`
	TenureYears       int               `json:"tenureYears"`
	InterestRate      decimal.Decimal   `json:"interestRate"`
	StartDate         string            `json:"startDate"`
	TargetFullEMI     decimal.Decimal   `json:"targetFullEmi"`
	Accrual           string            `json:"accrual,omitempty"`
	Disbursals        []DisbursalDTO    `json:"disbursals"`
	RateChanges       []RateChangeDTO   `json:"rateChanges"`
	ExtraPayments     []ExtraPaymentDTO `json:"extraPayments"`
}

// DisbursalDTO is one tranche release in a request body.
type DisbursalDTO struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// RateChangeDTO is one rate revision in a request body.
type RateChangeDTO struct {
	Date string          `json:"date"`
	Rate decimal.Decimal `json:"rate"`
}

// ExtraPaymentDTO is one prepayment in a request body.
type ExtraPaymentDTO struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ToModel converts the request into an unsaved calculation record.
func (req *CalculationRequest) ToModel() (*models.Calculation, error) {
	startDate, err := civil.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate %q: %w", req.StartDate, err)
	}

	now := time.Now().UTC()
	calc := &models.Calculation{
		ID:                uuid.New(),
		Name:              req.Name,
		PrincipalApproved: req.PrincipalApproved,
		TenureYears:       req.TenureYears,
		InterestRate:      req.InterestRate,
		StartDate:         startDate,
		TargetFullEMI:     req.TargetFullEMI,
		Accrual:           req.Accrual,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, d := range req.Disbursals {
		date, err := civil.ParseDate(d.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid disbursal date %q: %w", d.Date, err)
		}
		calc.Disbursals = append(calc.Disbursals, models.DisbursalEvent{Date: date, Amount: d.Amount})
	}
	for _, rc := range req.RateChanges {
		date, err := civil.ParseDate(rc.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid rate change date %q: %w", rc.Date, err)
		}
		calc.RateChanges = append(calc.RateChanges, models.RateChangeEvent{Date: date, Rate: rc.Rate})
	}
	for _, ep := range req.ExtraPayments {
		date, err := civil.ParseDate(ep.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid extra payment date %q: %w", ep.Date, err)
		}
		calc.ExtraPayments = append(calc.ExtraPayments, models.ExtraPaymentEvent{Date: date, Amount: ep.Amount})
	}

	return calc, nil
}

// SimulationResponse carries the engine result plus request metadata.
type SimulationResponse struct {
	Schedule   []engine.PaymentRow `json:"schedule"`
	Phases     []engine.Phase      `json:"phases"`
	Summary    engine.Summary      `json:"summary"`
	CapReached bool                `json:"capReached"`
	Warnings   []string            `json:"warnings,omitempty"`
	CSV        string              `json:"csv"`
	Duration   string              `json:"duration"`
}
