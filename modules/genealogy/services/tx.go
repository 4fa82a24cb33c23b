package services

import (
	"context"
	"errors"

	"github.com/shajara-uz/shajara/pkg/composables"
)

// inTx runs fn inside a fresh transaction on the context pool. When no
// pool is attached the caller owns atomicity and fn runs on the bare
// context; repositories backed by other stores rely on this.
func inTx[T any](ctx context.Context, fn func(txCtx context.Context) (T, error)) (T, error) {
	var zero T

	pool, err := composables.UsePool(ctx)
	if err != nil {
		if errors.Is(err, composables.ErrNoPool) {
			return fn(ctx)
		}
		return zero, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out, err := fn(composables.WithTx(ctx, tx))
	if err != nil {
		return zero, err
	}
	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}
	return out, nil
}

// lockBranchPair serializes concurrent primary-bridge writes for one
// unordered branch pair. The lock is transaction-scoped and released on
// commit or rollback.
func lockBranchPair(ctx context.Context, pairKey string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		if errors.Is(err, composables.ErrNoPool) {
			return nil
		}
		return err
	}
	_, err = tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", "bridge_pair:"+pairKey)
	return err
}
