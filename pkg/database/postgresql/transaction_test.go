package postgresql

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakePool struct {
	Client
	tx     *fakeTx
	opts   pgx.TxOptions
	begins int
}

func (p *fakePool) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	p.begins++
	p.opts = opts
	return p.tx, nil
}

func TestWithReadOnlyTransactionCommits(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}

	err := WithReadOnlyTransaction(context.Background(), pool, func(ctx context.Context) error {
		assert.Same(t, pool.tx, GetDBClient(ctx, pool))
		return nil
	})
	require.NoError(t, err)

	assert.True(t, pool.tx.committed)
	assert.False(t, pool.tx.rolledBack)
	assert.Equal(t, pgx.RepeatableRead, pool.opts.IsoLevel)
	assert.Equal(t, pgx.ReadOnly, pool.opts.AccessMode)
}

func TestWithReadOnlyTransactionRollsBack(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := WithReadOnlyTransaction(context.Background(), pool, func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, pool.tx.rolledBack)
	assert.False(t, pool.tx.committed)
}

func TestWithReadOnlyTransactionRollsBackOnPanic(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}

	assert.Panics(t, func() {
		_ = WithReadOnlyTransaction(context.Background(), pool, func(context.Context) error {
			panic("bad")
		})
	})
	assert.True(t, pool.tx.rolledBack)
}

func TestWithReadOnlyTransactionReusesOuter(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}

	err := WithReadOnlyTransaction(context.Background(), pool, func(ctx context.Context) error {
		return WithReadOnlyTransaction(ctx, pool, func(context.Context) error { return nil })
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pool.begins)
}

func TestGetDBClientWithoutTransaction(t *testing.T) {
	pool := &fakePool{}
	assert.Same(t, pool, GetDBClient(context.Background(), pool))
}
