package store

import (
	"github.com/google/uuid"

	"github.com/ledgerline/homeloan-forecast/internal/models"
)

// Storage defines the interface for database operations on saved
// calculations.
type Storage interface {
	CreateCalculation(calc *models.Calculation) error
	GetCalculation(id uuid.UUID) (*models.Calculation, error)
	GetCalculationByName(name string) (*models.Calculation, error)
	UpdateCalculation(calc *models.Calculation) error
	DeleteCalculation(id uuid.UUID) error
	ListCalculations() ([]*models.Calculation, error)

	Close() error
}

// ErrNotFound is returned when a calculation does not exist.
var ErrNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "calculation not found" }
