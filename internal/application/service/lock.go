package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// dossierLocker serializes transitions per dossier. Acquisition fails fast
// with ErrConcurrentModification instead of queueing: a caller that lost the
// race must re-read state before retrying, so waiting would only hand it a
// stale view.
type dossierLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newDossierLocker() *dossierLocker {
	return &dossierLocker{locks: make(map[string]chan struct{})}
}

// Acquire takes the lock for the dossier, waiting at most timeout. The
// returned release function must be called exactly once.
func (l *dossierLocker) Acquire(ctx context.Context, dossierID string, timeout time.Duration) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[dossierID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[dossierID] = ch
	}
	l.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: dossier %s is locked by another transition",
			domainwf.ErrConcurrentModification, dossierID)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domainwf.ErrConcurrentModification, ctx.Err())
	}
}
