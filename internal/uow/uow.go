package uow

import (
	"context"

	"github.com/kirinyoku/tixmarket/internal/repository"
)

// AfterCommit is a side effect deferred until the transaction has committed:
// cache invalidation, event publishing.
type AfterCommit func(ctx context.Context)

type UoW struct {
	store repository.Store
}

func NewUoW(store repository.Store) *UoW {
	return &UoW{store: store}
}

type queue []AfterCommit

func (q *queue) add(h AfterCommit) { *q = append(*q, h) }

// Do runs fn in one transaction and then the hooks fn registered. A store
// may call fn more than once when it retries a serialization failure; only
// the hooks of the attempt that committed run.
func (u *UoW) Do(
	ctx context.Context,
	fn func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error,
) error {
	var committed queue

	err := u.store.RunTx(ctx, func(ctx context.Context, tx repository.Repos) error {
		var attempt queue
		if err := fn(ctx, tx, attempt.add); err != nil {
			return err
		}
		committed = attempt
		return nil
	})
	if err != nil {
		return err
	}

	for _, h := range committed {
		h(ctx)
	}

	return nil
}
