package location

import (
	"context"
	"sync"
)

// completion is a one-shot result handle. The first resolve wins; later calls
// report false and change nothing.
type completion struct {
	mu        sync.Mutex
	completed bool
	code      string
	ok        bool
	done      chan struct{}
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

func (c *completion) resolve(code string, ok bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed {
		return false
	}
	c.completed = true
	c.code, c.ok = code, ok
	close(c.done)
	return true
}

func (c *completion) wait(ctx context.Context) (string, bool) {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.code, c.ok
	case <-ctx.Done():
		return "", false
	}
}
