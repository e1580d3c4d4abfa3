package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/corebank-io/corebank/internal/domain"
)

// Postgres error codes that abort a movement unit of work but are safe to
// re-run from scratch.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

const (
	retryLimit           = 3
	retryInitialInterval = 50 * time.Millisecond
	retryMaxInterval     = time.Second
	retryMaxElapsed      = 10 * time.Second
)

// Retrier re-runs a movement unit of work with exponential backoff when it
// fails on a transient conflict: a Postgres deadlock or serialization
// failure, or an optimistic version conflict on a balance write. Settlement
// calls must stay outside the retried operation.
type Retrier struct {
	logger zerolog.Logger
}

// NewRetrier creates a Retrier with the movement retry policy.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{logger: logger}
}

// Retry executes operation, re-running it on transient conflicts until the
// retry budget or the context runs out.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = retryMaxElapsed

	attempts := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isTransientConflict(err) {
			return backoff.Permanent(err)
		}

		attempts++
		if attempts > retryLimit {
			return backoff.Permanent(err)
		}

		r.logger.Warn().Err(err).
			Int("attempt", attempts).
			Msg("transient conflict, re-running unit of work")

		return err
	}, backoff.WithContext(b, ctx))
}

func isTransientConflict(err error) bool {
	if errors.Is(err, domain.ErrVersionConflict) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrDeadlock || pgErr.Code == pgErrSerializationFailure
	}

	return false
}
