// internal/browser/session/provider.go
package session

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/emojicheck/internal/browser"
)

// Provider adapts a Factory to hand sessions out as browser.Driver values.
type Provider struct {
	*Factory
}

// Acquire launches a browser session.
func (p Provider) Acquire(ctx context.Context) (browser.Driver, error) {
	s, err := p.Factory.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Release terminates a session previously returned by Acquire.
func (p Provider) Release(d browser.Driver) error {
	if d == nil {
		return nil
	}
	s, ok := d.(*Session)
	if !ok {
		return fmt.Errorf("session provider cannot release %T", d)
	}
	return p.Factory.Release(s)
}
