package scenario

import (
	"context"
	"sync"

	"github.com/xkilldash9x/emojicheck/internal/browser"
	"github.com/xkilldash9x/emojicheck/internal/mocks"
)

// fakeProvider hands out one FakeEncoder and records releases.
type fakeProvider struct {
	mu         sync.Mutex
	driver     *mocks.FakeEncoder
	acquireErr error
	releaseErr error
	acquired   int
	released   []browser.Driver
}

func (p *fakeProvider) Acquire(ctx context.Context) (browser.Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.driver, nil
}

func (p *fakeProvider) Release(d browser.Driver) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = append(p.released, d)
	return p.releaseErr
}

func (p *fakeProvider) releaseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.released)
}
