package store

import (
	"database/sql"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/homeloan-forecast/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore manages the database connection and operations for SQLite.
// Monetary columns are stored as TEXT so no precision is lost; a reloaded
// calculation re-runs to an identical schedule.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		principal_approved TEXT NOT NULL,
		tenure_years INTEGER NOT NULL,
		interest_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		target_full_emi TEXT NOT NULL DEFAULT '0',
		accrual TEXT NOT NULL DEFAULT 'flat',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS disbursals (
		calculation_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (calculation_id, position),
		FOREIGN KEY (calculation_id) REFERENCES calculations(id)
	);
	CREATE TABLE IF NOT EXISTS rate_changes (
		calculation_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT NOT NULL,
		rate TEXT NOT NULL,
		PRIMARY KEY (calculation_id, position),
		FOREIGN KEY (calculation_id) REFERENCES calculations(id)
	);
	CREATE TABLE IF NOT EXISTS extra_payments (
		calculation_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		date TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (calculation_id, position),
		FOREIGN KEY (calculation_id) REFERENCES calculations(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateCalculation inserts a new calculation and its event lists.
func (s *SQLiteStore) CreateCalculation(calc *models.Calculation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO calculations (id, name, principal_approved, tenure_years, interest_rate, start_date, target_full_emi, accrual, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		calc.ID.String(), calc.Name, calc.PrincipalApproved.String(), calc.TenureYears,
		calc.InterestRate.String(), calc.StartDate.String(), calc.TargetFullEMI.String(),
		accrualOrDefault(calc.Accrual), calc.CreatedAt, calc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create calculation: %w", err)
	}

	if err := insertEvents(tx, calc); err != nil {
		return err
	}

	return tx.Commit()
}

func accrualOrDefault(accrual string) string {
	if accrual == "" {
		return "flat"
	}
	return accrual
}

func insertEvents(tx *sql.Tx, calc *models.Calculation) error {
	for i, d := range calc.Disbursals {
		if _, err := tx.Exec(`INSERT INTO disbursals (calculation_id, position, date, amount) VALUES (?, ?, ?, ?)`,
			calc.ID.String(), i, d.Date.String(), d.Amount.String()); err != nil {
			return fmt.Errorf("failed to store disbursal: %w", err)
		}
	}
	for i, rc := range calc.RateChanges {
		if _, err := tx.Exec(`INSERT INTO rate_changes (calculation_id, position, date, rate) VALUES (?, ?, ?, ?)`,
			calc.ID.String(), i, rc.Date.String(), rc.Rate.String()); err != nil {
			return fmt.Errorf("failed to store rate change: %w", err)
		}
	}
	for i, ep := range calc.ExtraPayments {
		if _, err := tx.Exec(`INSERT INTO extra_payments (calculation_id, position, date, amount) VALUES (?, ?, ?, ?)`,
			calc.ID.String(), i, ep.Date.String(), ep.Amount.String()); err != nil {
			return fmt.Errorf("failed to store extra payment: %w", err)
		}
	}
	return nil
}

// GetCalculation retrieves a calculation by its ID.
func (s *SQLiteStore) GetCalculation(id uuid.UUID) (*models.Calculation, error) {
	row := s.db.QueryRow(
		`SELECT id, name, principal_approved, tenure_years, interest_rate, start_date, target_full_emi, accrual, created_at, updated_at
		FROM calculations WHERE id = ?`, id.String())
	return s.scanCalculation(row)
}

// GetCalculationByName retrieves a calculation by its user-assigned name.
func (s *SQLiteStore) GetCalculationByName(name string) (*models.Calculation, error) {
	row := s.db.QueryRow(
		`SELECT id, name, principal_approved, tenure_years, interest_rate, start_date, target_full_emi, accrual, created_at, updated_at
		FROM calculations WHERE name = ?`, name)
	return s.scanCalculation(row)
}

func (s *SQLiteStore) scanCalculation(row *sql.Row) (*models.Calculation, error) {
	var (
		calc                                         models.Calculation
		idStr, principal, rate, startDate, targetEMI string
		created, updated                             time.Time
	)
	err := row.Scan(&idStr, &calc.Name, &principal, &calc.TenureYears, &rate, &startDate, &targetEMI, &calc.Accrual, &created, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get calculation: %w", err)
	}

	if err := fillCalculation(&calc, idStr, principal, rate, startDate, targetEMI, created, updated); err != nil {
		return nil, err
	}
	if err := s.loadEvents(&calc); err != nil {
		return nil, err
	}
	return &calc, nil
}

func fillCalculation(calc *models.Calculation, idStr, principal, rate, startDate, targetEMI string, created, updated time.Time) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid calculation id %q: %w", idStr, err)
	}
	calc.ID = id

	if calc.PrincipalApproved, err = decimal.NewFromString(principal); err != nil {
		return fmt.Errorf("invalid principal %q: %w", principal, err)
	}
	if calc.InterestRate, err = decimal.NewFromString(rate); err != nil {
		return fmt.Errorf("invalid interest rate %q: %w", rate, err)
	}
	if calc.TargetFullEMI, err = decimal.NewFromString(targetEMI); err != nil {
		return fmt.Errorf("invalid target EMI %q: %w", targetEMI, err)
	}
	if calc.StartDate, err = civil.ParseDate(startDate); err != nil {
		return fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	calc.CreatedAt = created
	calc.UpdatedAt = updated
	return nil
}

func (s *SQLiteStore) loadEvents(calc *models.Calculation) error {
	rows, err := s.db.Query(`SELECT date, amount FROM disbursals WHERE calculation_id = ? ORDER BY position`, calc.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load disbursals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dateStr, amountStr string
		if err := rows.Scan(&dateStr, &amountStr); err != nil {
			return fmt.Errorf("failed to scan disbursal: %w", err)
		}
		date, amount, err := parseDateAmount(dateStr, amountStr)
		if err != nil {
			return err
		}
		calc.Disbursals = append(calc.Disbursals, models.DisbursalEvent{Date: date, Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error during disbursal iteration: %w", err)
	}

	rateRows, err := s.db.Query(`SELECT date, rate FROM rate_changes WHERE calculation_id = ? ORDER BY position`, calc.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load rate changes: %w", err)
	}
	defer rateRows.Close()
	for rateRows.Next() {
		var dateStr, rateStr string
		if err := rateRows.Scan(&dateStr, &rateStr); err != nil {
			return fmt.Errorf("failed to scan rate change: %w", err)
		}
		date, rate, err := parseDateAmount(dateStr, rateStr)
		if err != nil {
			return err
		}
		calc.RateChanges = append(calc.RateChanges, models.RateChangeEvent{Date: date, Rate: rate})
	}
	if err := rateRows.Err(); err != nil {
		return fmt.Errorf("error during rate change iteration: %w", err)
	}

	extraRows, err := s.db.Query(`SELECT date, amount FROM extra_payments WHERE calculation_id = ? ORDER BY position`, calc.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load extra payments: %w", err)
	}
	defer extraRows.Close()
	for extraRows.Next() {
		var dateStr, amountStr string
		if err := extraRows.Scan(&dateStr, &amountStr); err != nil {
			return fmt.Errorf("failed to scan extra payment: %w", err)
		}
		date, amount, err := parseDateAmount(dateStr, amountStr)
		if err != nil {
			return err
		}
		calc.ExtraPayments = append(calc.ExtraPayments, models.ExtraPaymentEvent{Date: date, Amount: amount})
	}
	if err := extraRows.Err(); err != nil {
		return fmt.Errorf("error during extra payment iteration: %w", err)
	}

	return nil
}

func parseDateAmount(dateStr, amountStr string) (civil.Date, decimal.Decimal, error) {
	date, err := civil.ParseDate(dateStr)
	if err != nil {
		return civil.Date{}, decimal.Zero, fmt.Errorf("invalid event date %q: %w", dateStr, err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return civil.Date{}, decimal.Zero, fmt.Errorf("invalid event amount %q: %w", amountStr, err)
	}
	return date, amount, nil
}

// UpdateCalculation replaces an existing calculation and its event lists.
func (s *SQLiteStore) UpdateCalculation(calc *models.Calculation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE calculations SET name = ?, principal_approved = ?, tenure_years = ?, interest_rate = ?, start_date = ?, target_full_emi = ?, accrual = ?, updated_at = ?
		WHERE id = ?`,
		calc.Name, calc.PrincipalApproved.String(), calc.TenureYears, calc.InterestRate.String(),
		calc.StartDate.String(), calc.TargetFullEMI.String(), accrualOrDefault(calc.Accrual),
		calc.UpdatedAt, calc.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update calculation: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	for _, table := range []string{"disbursals", "rate_changes", "extra_payments"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE calculation_id = ?", table), calc.ID.String()); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertEvents(tx, calc); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteCalculation removes a calculation and its events within a transaction.
func (s *SQLiteStore) DeleteCalculation(id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"disbursals", "rate_changes", "extra_payments"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE calculation_id = ?", table), id.String()); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	result, err := tx.Exec(`DELETE FROM calculations WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete calculation: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// ListCalculations retrieves all saved calculations with their event lists.
func (s *SQLiteStore) ListCalculations() ([]*models.Calculation, error) {
	rows, err := s.db.Query(
		`SELECT id, name, principal_approved, tenure_years, interest_rate, start_date, target_full_emi, accrual, created_at, updated_at
		FROM calculations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var calcs []*models.Calculation
	for rows.Next() {
		var (
			calc                                         models.Calculation
			idStr, principal, rate, startDate, targetEMI string
			created, updated                             time.Time
		)
		if err := rows.Scan(&idStr, &calc.Name, &principal, &calc.TenureYears, &rate, &startDate, &targetEMI, &calc.Accrual, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan calculation row: %w", err)
		}
		if err := fillCalculation(&calc, idStr, principal, rate, startDate, targetEMI, created, updated); err != nil {
			return nil, err
		}
		calcs = append(calcs, &calc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	for _, calc := range calcs {
		if err := s.loadEvents(calc); err != nil {
			return nil, err
		}
	}
	return calcs, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
