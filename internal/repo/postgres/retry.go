package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lostboitest/casemanage/internal/observability"
)

// Every repo call funnels through withRetry: transient (connection-class)
// failures get a small fixed number of re-attempts with a brief fixed delay
// before the error surfaces. Not-found rows, constraint violations and
// cancelled contexts are never retried.
const (
	maxAttempts    = 3
	retryDelay     = 250 * time.Millisecond
	attemptTimeout = 3 * time.Second
)

func withRetry(ctx context.Context, prom *observability.Prom, op string, fn func(ctx context.Context) error) error {
	run := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		defer cancel()

		return fn(attemptCtx)
	}

	var err error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if prom != nil {
				prom.DbRetriesTotal.WithLabelValues(op).Inc()
			}

			select {
			case <-ctx.Done():
				return err
			case <-time.After(retryDelay):
			}
		}

		if prom != nil {
			err = prom.ObserveDB(op, run)
		} else {
			err = run()
		}

		if err == nil || !isTransient(err) {
			return err
		}
	}

	return err
}

// isTransient reports whether an error is worth another attempt. Only
// connection-level failures qualify.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	// a timed-out attempt may just be a hung connection; the retry loop
	// bails out anyway once the request context itself is done
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		// class 08: connection exception; 57P01: admin shutdown
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "57P01"
	}

	if pgconn.SafeToRetry(err) {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "connection") || strings.Contains(msg, "broken pipe") || strings.Contains(msg, "timeout")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}
