package postgresql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

type txKey struct{}

// ContextWithTx returns a context that repositories resolve to tx.
func ContextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// WithTransaction executes fn inside a database transaction. When ctx already
// carries a transaction, fn runs inside a savepoint of it instead, so a failure
// rolls back only fn's writes.
func WithTransaction(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	var (
		tx  pgx.Tx
		err error
	)
	if outer, ok := txFromContext(ctx); ok {
		tx, err = outer.Begin(ctx)
		if err != nil {
			return fmt.Errorf("create savepoint: %w", err)
		}
	} else {
		tx, err = db.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
	}
	return runTx(ctx, tx, fn)
}

// WithSnapshot executes fn inside a read-only REPEATABLE READ transaction.
func WithSnapshot(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	if outer, ok := txFromContext(ctx); ok {
		return fn(outer)
	}
	tx, err := db.BeginSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	return runTx(ctx, tx, fn)
}

// WithSharedSnapshot opens a snapshot, exports it and runs the first fn on it.
// Every other fn runs concurrently in its own transaction that imports the
// exported snapshot, so all of them see identical data.
func WithSharedSnapshot(ctx context.Context, db *database.DB, fns ...func(tx pgx.Tx) error) error {
	if len(fns) == 0 {
		return nil
	}
	if outer, ok := txFromContext(ctx); ok {
		for _, fn := range fns {
			if err := fn(outer); err != nil {
				return err
			}
		}
		return nil
	}

	return WithSnapshot(ctx, db, func(lead pgx.Tx) error {
		var snapshotID string
		if err := lead.QueryRow(ctx, `SELECT pg_export_snapshot()`).Scan(&snapshotID); err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error { return fns[0](lead) })
		for _, fn := range fns[1:] {
			g.Go(func() error {
				tx, err := db.BeginSnapshot(gCtx)
				if err != nil {
					return fmt.Errorf("begin snapshot: %w", err)
				}
				return runTx(gCtx, tx, func(tx pgx.Tx) error {
					// The id comes from the server and SET does not take parameters.
					if _, err := tx.Exec(gCtx, fmt.Sprintf("SET TRANSACTION SNAPSHOT '%s'", snapshotID)); err != nil {
						return fmt.Errorf("import snapshot: %w", err)
					}
					return fn(tx)
				})
			})
		}
		return g.Wait()
	})
}

func runTx(ctx context.Context, tx pgx.Tx, fn func(tx pgx.Tx) error) error {
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("rollback error during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	// Execute function
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetQuerier returns either transaction or pool
// Used in repositories to support both transactional and non-transactional operations
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}

type transactor struct {
	db *database.DB
}

func NewTransactor(db *database.DB) database.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, t.db, func(tx pgx.Tx) error {
		return fn(ContextWithTx(ctx, tx))
	})
}

func (t *transactor) WithinSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithSnapshot(ctx, t.db, func(tx pgx.Tx) error {
		return fn(ContextWithTx(ctx, tx))
	})
}

func (t *transactor) WithinSharedSnapshot(ctx context.Context, fns ...func(ctx context.Context) error) error {
	wrapped := make([]func(tx pgx.Tx) error, len(fns))
	for i, fn := range fns {
		wrapped[i] = func(tx pgx.Tx) error {
			return fn(ContextWithTx(ctx, tx))
		}
	}
	return WithSharedSnapshot(ctx, t.db, wrapped...)
}
