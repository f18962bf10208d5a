package assets

import (
	"context"
	"errors"
	"image"
	"sync"
)

// ErrPending is returned by Result before the load has finished.
var ErrPending = errors.New("assets still loading")

// Image is a decoded image asset. Width and Height are the decoded bounds.
type Image struct {
	Width  int
	Height int
	Source image.Image
}

// Assets maps manifest keys to decoded images.
type Assets map[string]*Image

// Pending is the one-shot result of a Load. It resolves exactly once and
// never changes afterwards. The zero value is an unresolved Pending.
type Pending struct {
	initOnce sync.Once
	done     chan struct{}
	once     sync.Once
	assets   Assets
	err      error
}

func newPending() *Pending {
	return &Pending{}
}

func (p *Pending) doneChan() chan struct{} {
	p.initOnce.Do(func() {
		p.done = make(chan struct{})
	})
	return p.done
}

// resolve stores the result and releases waiters. Only the first call has
// an effect.
func (p *Pending) resolve(a Assets, err error) bool {
	resolved := false
	p.once.Do(func() {
		p.assets = a
		p.err = err
		close(p.doneChan())
		resolved = true
	})
	return resolved
}

// Done is closed once the load has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} {
	return p.doneChan()
}

// Ready reports whether the load has finished. It never blocks.
func (p *Pending) Ready() bool {
	select {
	case <-p.doneChan():
		return true
	default:
		return false
	}
}

// Result returns the loaded assets, or ErrPending if the load has not
// finished yet.
func (p *Pending) Result() (Assets, error) {
	if !p.Ready() {
		return nil, ErrPending
	}
	return p.assets, p.err
}

// Wait blocks until the load finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Assets, error) {
	select {
	case <-p.doneChan():
		return p.assets, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolved returns a Pending that has already finished with a and err.
func Resolved(a Assets, err error) *Pending {
	p := newPending()
	p.resolve(a, err)
	return p
}
