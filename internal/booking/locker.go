package booking

import (
	"context"
	"sync"
)

// Locker hands out the exclusive section that guards booking writes.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// ProcessLocker is a process-wide mutex. Lock blocks until acquired and
// ignores ctx.
type ProcessLocker struct {
	mu sync.Mutex
}

func NewProcessLocker() *ProcessLocker {
	return &ProcessLocker{}
}

func (l *ProcessLocker) Lock(context.Context) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}
