package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	var g Guard

	release := make(chan struct{})
	entered := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- g.Do(func() error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.True(t, g.Busy())

	called := false
	err := g.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, called)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, g.Busy())

	boom := errors.New("boom")
	assert.ErrorIs(t, g.Do(func() error { return boom }), boom)
	assert.False(t, g.Busy(), "released after an error")
}
