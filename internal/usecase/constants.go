package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultReportTTL bounds how long a cached derived view may be served
	DefaultReportTTL = 10 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultForecastHorizon is the number of months forecast when none is given
	DefaultForecastHorizon = 6

	// MaxForecastHorizon caps the forecast horizon in months
	MaxForecastHorizon = 60
)
