// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/viper"

	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/pkg/constants"
	"github.com/ledgerline/homeloan-forecast/pkg/datetime"
	"github.com/ledgerline/homeloan-forecast/pkg/events"
)

// DateLayout is the format expected in config files and is also the output
// date format.
const DateLayout = constants.DateLayout

// Configuration holds all configuration for homeloan-forecast.
type Configuration struct {
	Loan          Loan
	Disbursals    []DisbursalEntry
	RateChanges   []RateChangeEntry
	ExtraPayments []ExtraPaymentEntry
	Logging       LoggingConfig `yaml:"logging,omitempty"`
	Output        OutputConfig  `yaml:"output,omitempty"`
}

// Loan holds the loan parameters of the calculation.
type Loan struct {
	Name              string
	PrincipalApproved float64
	TenureYears       int
	InterestRate      float64
	StartDate         string
	TargetFullEmi     float64
	Accrual           string `yaml:"accrual,omitempty"` // flat, dayWeighted
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// DisbursalEntry is one tranche release in the config file.
type DisbursalEntry struct {
	Date   string
	Amount float64
}

// RateChangeEntry is one interest-rate revision in the config file.
type RateChangeEntry struct {
	Date string
	Rate float64
}

// ExtraPaymentEntry is one prepayment in the config file. A one-off payment
// carries Date; a recurring payment carries StartDate/EndDate/Frequency
// instead and is expanded into individual dates before simulation.
type ExtraPaymentEntry struct {
	Date      string
	Amount    float64
	StartDate string `yaml:"startDate,omitempty"`
	EndDate   string `yaml:"endDate,omitempty"`
	Frequency int    `yaml:"frequency,omitempty"` // months
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from the
// given reader.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// AccrualPolicy returns the engine accrual policy selected by the config.
func (conf *Configuration) AccrualPolicy() engine.AccrualPolicy {
	return engine.ParseAccrualPolicy(conf.Loan.Accrual)
}

// SimulationInputs parses every date in the configuration, expands recurring
// extra payments, and returns the engine inputs with each event list sorted
// ascending by date.
func (conf *Configuration) SimulationInputs() (engine.LoanParameters, []engine.Disbursal, []engine.RateChange, []engine.ExtraPayment, error) {
	var params engine.LoanParameters

	startDate, err := datetime.ParseDate(conf.Loan.StartDate)
	if err != nil {
		return params, nil, nil, nil, fmt.Errorf("invalid loan startDate %q: %w", conf.Loan.StartDate, err)
	}

	params = engine.LoanParameters{
		PrincipalApproved: conf.Loan.PrincipalApproved,
		TenureYears:       conf.Loan.TenureYears,
		InitialAnnualRate: conf.Loan.InterestRate,
		StartDate:         startDate,
		TargetFullEMI:     conf.Loan.TargetFullEmi,
	}
	loanEnd := datetime.AddMonths(startDate, conf.Loan.TenureYears*constants.MonthsPerYear)

	var disbursals []engine.Disbursal
	for _, entry := range conf.Disbursals {
		date, err := datetime.ParseDate(entry.Date)
		if err != nil {
			return params, nil, nil, nil, fmt.Errorf("invalid disbursal date %q: %w", entry.Date, err)
		}
		disbursals = append(disbursals, engine.Disbursal{Date: date, Amount: entry.Amount})
	}

	var rateChanges []engine.RateChange
	for _, entry := range conf.RateChanges {
		date, err := datetime.ParseDate(entry.Date)
		if err != nil {
			return params, nil, nil, nil, fmt.Errorf("invalid rate change date %q: %w", entry.Date, err)
		}
		rateChanges = append(rateChanges, engine.RateChange{Date: date, Rate: entry.Rate})
	}

	var extraPayments []engine.ExtraPayment
	for _, entry := range conf.ExtraPayments {
		if entry.Date != "" {
			date, err := datetime.ParseDate(entry.Date)
			if err != nil {
				return params, nil, nil, nil, fmt.Errorf("invalid extra payment date %q: %w", entry.Date, err)
			}
			extraPayments = append(extraPayments, engine.ExtraPayment{Date: date, Amount: entry.Amount})
			continue
		}

		recurring := events.Recurring{
			Amount:    entry.Amount,
			StartDate: entry.StartDate,
			EndDate:   entry.EndDate,
			Frequency: entry.Frequency,
		}
		dates, err := recurring.ExpandDates(loanEnd)
		if err != nil {
			return params, nil, nil, nil, err
		}
		for _, date := range dates {
			extraPayments = append(extraPayments, engine.ExtraPayment{Date: date, Amount: entry.Amount})
		}
	}

	sort.SliceStable(disbursals, func(i, j int) bool { return disbursals[i].Date.Before(disbursals[j].Date) })
	sort.SliceStable(rateChanges, func(i, j int) bool { return rateChanges[i].Date.Before(rateChanges[j].Date) })
	sort.SliceStable(extraPayments, func(i, j int) bool { return extraPayments[i].Date.Before(extraPayments[j].Date) })

	return params, disbursals, rateChanges, extraPayments, nil
}
