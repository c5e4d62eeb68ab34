package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/profitum/dossier-engine/internal/domain/entity"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// nopLogger satisfies Logger without output
type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// memDossierRepo is an in-memory DossierRepository with optimistic versioning.
// GetByID returns a copy so callers mutate a working record, not the store.
type memDossierRepo struct {
	mu       sync.Mutex
	dossiers map[string]*entity.Dossier

	// updateHook, when set, runs inside UpdateWithVersion before the write
	updateHook func(d *entity.Dossier) error
}

func newMemDossierRepo() *memDossierRepo {
	return &memDossierRepo{dossiers: make(map[string]*entity.Dossier)}
}

func (r *memDossierRepo) Create(ctx context.Context, d *entity.Dossier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Version == 0 {
		d.Version = 1
	}
	cp := *d
	r.dossiers[d.ID] = &cp
	return nil
}

func (r *memDossierRepo) GetByID(ctx context.Context, id string) (*entity.Dossier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dossiers[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDossierRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*entity.Dossier, error) {
	return nil, nil
}

func (r *memDossierRepo) ListByExpert(ctx context.Context, expertID string, limit, offset int) ([]*entity.Dossier, error) {
	return nil, nil
}

func (r *memDossierRepo) UpdateWithVersion(ctx context.Context, d *entity.Dossier) error {
	if r.updateHook != nil {
		if err := r.updateHook(d); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.dossiers[d.ID]
	if !ok || stored.Version != d.Version {
		return fmt.Errorf("%w: dossier %s at version %d", domainwf.ErrConcurrentModification, d.ID, d.Version)
	}
	cp := *d
	cp.Version = stored.Version + 1
	r.dossiers[d.ID] = &cp
	d.Version = cp.Version
	return nil
}

// memHistoryRepo records appended transitions in order
type memHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.DossierHistory
}

func (r *memHistoryRepo) Create(ctx context.Context, h *entity.DossierHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *h
	cp.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memHistoryRepo) GetByDossierID(ctx context.Context, dossierID string) ([]*entity.DossierHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DossierHistory
	for _, h := range r.entries {
		if h.DossierID == dossierID {
			out = append(out, h)
		}
	}
	return out, nil
}

// memNotificationRepo stores notifications with func-field overrides
type memNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification

	createFn func(ctx context.Context, n *entity.Notification) error
}

func (r *memNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if r.createFn != nil {
		return r.createFn(ctx, n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *memNotificationRepo) GetByDossierID(ctx context.Context, dossierID string) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.notifications {
		if n.DossierID == dossierID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNotificationRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.Status = status
			n.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("notification %s not found", id)
}

// passthroughTx runs the function without a real transaction
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// failingTx fails every transaction with the given error
type failingTx struct{ err error }

func (t failingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.err
}

// mockDirectory answers eligibility from a func field
type mockDirectory struct {
	isEligibleFn func(ctx context.Context, expertID, produitID string) (bool, error)
}

func (m *mockDirectory) IsEligible(ctx context.Context, expertID, produitID string) (bool, error) {
	if m.isEligibleFn != nil {
		return m.isEligibleFn(ctx, expertID, produitID)
	}
	return true, nil
}

// mockTransport records dispatched notifications with a func-field override
type mockTransport struct {
	mu         sync.Mutex
	dispatched []*entity.Notification

	dispatchFn func(ctx context.Context, n *entity.Notification) error
}

func (m *mockTransport) Dispatch(ctx context.Context, n *entity.Notification) error {
	if m.dispatchFn != nil {
		return m.dispatchFn(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, n)
	return nil
}
