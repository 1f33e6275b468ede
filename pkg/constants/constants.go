// Package constants provides shared constants for the homeloan-forecast application.
package constants

// DateLayout is the calendar-date format expected in config files and is also
// the output date format.
const DateLayout = "2006-01-02"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DaysPerMonth is the fixed day-per-month approximation used when
	// converting a remaining day span into a remaining tenure in months
	DaysPerMonth = 30.4375

	// DaysPerYear is the day-count basis for the day-weighted accrual mode
	DaysPerYear = 365.0

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// MaxScheduleMonths bounds the simulation loop; a schedule that reaches
	// this length without closing indicates malformed input
	MaxScheduleMonths = 1200

	// DefaultFrequency is the default frequency in months for recurring
	// extra payments
	DefaultFrequency = 1
)

// Accrual policy names
const (
	// AccrualPolicyFlat charges a flat monthly rate on the opening balance
	AccrualPolicyFlat = "flat"

	// AccrualPolicyDayWeighted sub-divides each month around disbursal and
	// rate-change dates and charges per-day interest
	AccrualPolicyDayWeighted = "dayWeighted"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultDatabaseFile is the default SQLite database file for saved
	// calculations
	DefaultDatabaseFile = "homeloan.db"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"
)
