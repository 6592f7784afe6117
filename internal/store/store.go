// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SCMProps Contributors

// Package store provides the PostgreSQL persistence for properties,
// configuration, repositories and the search index.
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// poolIface is the subset of *pgxpool.Pool the stores use; pgxmock implements it too.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConnectOptions tunes the initial connection attempt.
type ConnectOptions struct {
	// Timeout bounds each ping.
	Timeout time.Duration
	// Retries is the number of additional attempts after the first failure.
	Retries uint64
	// Backoff is the initial delay, doubled after every failed attempt.
	Backoff time.Duration
}

// DefaultConnectOptions waits up to roughly a minute for the database.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		Timeout: 5 * time.Second,
		Retries: 6,
		Backoff: 500 * time.Millisecond,
	}
}

// Connect opens a pool and pings the database until it answers or the
// retries are exhausted. Authentication and configuration errors are not retried.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrapf(err, "parse database url")
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	if opts.Backoff <= 0 {
		opts.Backoff = DefaultConnectOptions().Backoff
	}
	backoff := retry.WithCappedDuration(10*time.Second, retry.NewExponential(opts.Backoff))
	backoff = retry.WithMaxRetries(opts.Retries, backoff)

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx := ctx
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			pingCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		if err := pool.Ping(pingCtx); err != nil {
			if permanent(err) {
				return err
			}
			slog.WarnContext(ctx, "database not reachable yet", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").With("attempts", attempt).Wrap(err)
	}

	slog.DebugContext(ctx, "connected to database", "attempts", attempt)
	return pool, nil
}

// permanent reports errors a retry cannot fix.
func permanent(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.InvalidPassword, pgerrcode.InvalidAuthorizationSpecification, pgerrcode.InvalidCatalogName:
		return true
	default:
		return false
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
