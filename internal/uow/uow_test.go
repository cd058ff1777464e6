package uow

import (
	"context"
	"errors"
	"testing"

	"github.com/kirinyoku/tixmarket/internal/repository"
	"github.com/kirinyoku/tixmarket/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// retryingStore runs every transaction body twice, the way the postgres
// store does after a serialization failure.
type retryingStore struct {
	*memory.Store
}

func (s retryingStore) RunTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	_ = s.Store.RunTx(ctx, fn)
	return s.Store.RunTx(ctx, fn)
}

func TestDo_RunsHooksAfterCommit(t *testing.T) {
	u := NewUoW(memory.NewStore())

	var order []string
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		after(func(context.Context) { order = append(order, "hook") })
		order = append(order, "body")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"body", "hook"}, order)
}

func TestDo_SkipsHooksOnError(t *testing.T) {
	u := NewUoW(memory.NewStore())
	boom := errors.New("boom")

	ran := false
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		after(func(context.Context) { ran = true })
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, ran)
}

func TestDo_RetriedAttemptRunsHooksOnce(t *testing.T) {
	u := NewUoW(retryingStore{memory.NewStore()})

	calls := 0
	err := u.Do(context.Background(), func(ctx context.Context, tx repository.Repos, after func(AfterCommit)) error {
		after(func(context.Context) { calls++ })
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
