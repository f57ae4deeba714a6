package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"

	// Two overlapping due-check sweeps race on this key. The loser's retry
	// sees the winner's postings and has nothing left to do.
	postingKeyConstraint = "recurring_postings_pkey"
)

// RetrierConfig bounds how long Retry keeps trying.
type RetrierConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetrierConfig suits the interactive HTTP path.
var DefaultRetrierConfig = RetrierConfig{
	MaxRetries:      3,
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	MaxElapsedTime:  10 * time.Second,
}

// Retrier implements usecase.Retrier.
type Retrier struct {
	cfg RetrierConfig
}

// NewRetrier creates a Retrier with DefaultRetrierConfig.
func NewRetrier() *Retrier {
	return NewRetrierWithConfig(DefaultRetrierConfig)
}

// NewRetrierWithConfig creates a Retrier. Zero fields fall back to the
// defaults.
func NewRetrierWithConfig(cfg RetrierConfig) *Retrier {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultRetrierConfig.MaxRetries
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultRetrierConfig.InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultRetrierConfig.MaxInterval
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = DefaultRetrierConfig.MaxElapsedTime
	}
	return &Retrier{cfg: cfg}
}

// Retry runs operation until it succeeds, fails with an error that is not
// a transient conflict, or the retry budget runs out. The last error is
// returned as is.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialInterval
	b.MaxInterval = r.cfg.MaxInterval
	b.MaxElapsedTime = r.cfg.MaxElapsedTime

	attempt := 0
	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		code, ok := conflictCode(err)
		if !ok {
			return backoff.Permanent(err)
		}
		attempt++
		if attempt > r.cfg.MaxRetries {
			return backoff.Permanent(err)
		}

		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("sqlstate", code).
			Int("attempt", attempt).
			Msg("transaction conflict, retrying")
		return err
	}, backoff.WithContext(b, ctx))
}

// conflictCode reports whether err is a conflict another attempt can
// resolve, and its SQLSTATE.
func conflictCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure:
		return pgErr.Code, true
	case pgErrUniqueViolation:
		return pgErr.Code, pgErr.ConstraintName == postingKeyConstraint
	}
	return "", false
}
