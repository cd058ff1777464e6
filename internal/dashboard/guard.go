package dashboard

import "sync/atomic"

// Guard admits one action at a time. It backs the "processing" state of a
// button: a second click while the first request is in flight is refused.
type Guard struct {
	busy atomic.Bool
}

// Do runs fn unless another Do on the same guard is still running, in which
// case it returns ErrBusy without calling fn.
func (g *Guard) Do(fn func() error) error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer g.busy.Store(false)

	return fn()
}

func (g *Guard) Busy() bool {
	return g.busy.Load()
}
