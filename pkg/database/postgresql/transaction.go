package postgresql

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// Pool is a Client that can start transactions with explicit options.
// *pgxpool.Pool satisfies it.
type Pool interface {
	Client
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var snapshotReadOnly = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// WithReadOnlyTransaction runs fn in a read-only REPEATABLE READ
// transaction, so every query made through GetDBClient inside fn sees one
// snapshot. A transaction already in ctx is reused.
func WithReadOnlyTransaction(ctx context.Context, db Pool, fn func(context.Context) error) error {
	return inTx(ctx, db, snapshotReadOnly, fn)
}

func inTx(ctx context.Context, db Pool, opts pgx.TxOptions, fn func(context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		switch p := recover(); {
		case p != nil:
			_ = tx.Rollback(ctx)
			panic(p)
		case err != nil:
			_ = tx.Rollback(ctx)
		default:
			err = tx.Commit(ctx)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

// GetDBClient returns the transaction stored in ctx, or defaultClient when
// there is none.
func GetDBClient(ctx context.Context, defaultClient Client) Client {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return defaultClient
}
