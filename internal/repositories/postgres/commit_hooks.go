package postgres

import (
	"context"
	"sync"
)

// commitHooks collects cache invalidations raised inside a transaction and
// runs them once it has committed. A nil *commitHooks runs them right away.
type commitHooks struct {
	mu  sync.Mutex
	fns []func(context.Context)
}

func (h *commitHooks) onCommit(ctx context.Context, fn func(context.Context)) {
	if h == nil {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *commitHooks) flush(ctx context.Context) {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ctx)
	}
}
