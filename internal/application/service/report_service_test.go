package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/application/dispatcher"
	"github.com/profitum/dossier-engine/internal/application/report"
	"github.com/profitum/dossier-engine/internal/domain/entity"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

type stubDocStorage struct {
	refs []*entity.DocumentRef
}

func (s *stubDocStorage) Register(ctx context.Context, ref *entity.DocumentRef) error { return nil }

func (s *stubDocStorage) ListByDossier(ctx context.Context, dossierID string) ([]*entity.DocumentRef, error) {
	return s.refs, nil
}

func (s *stubDocStorage) ListByCategory(ctx context.Context, dossierID, category string) ([]*entity.DocumentRef, error) {
	return s.refs, nil
}

func (s *stubDocStorage) Delete(ctx context.Context, id string) error { return nil }

func newReportFixture(t *testing.T) (ReportService, *memDossierRepo) {
	t.Helper()
	repo := newMemDossierRepo()
	builder, err := report.NewWorkbookBuilder(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewWorkbookBuilder() failed: %v", err)
	}
	disp := dispatcher.NewDispatcher(nopLogger{})
	t.Cleanup(func() { disp.Close() })
	svc := NewReportService(repo, &stubDocStorage{}, builder, disp, nopLogger{})
	return svc, repo
}

func TestGenerateAuditReport(t *testing.T) {
	svc, repo := newReportFixture(t)
	ctx := context.Background()

	montantFinal := 15000.0
	d := &entity.Dossier{
		ID:           "d1",
		ClientID:     "client-1",
		ProduitID:    "CIR",
		Status:       domainwf.StatusAuditCompleted,
		MontantFinal: &montantFinal,
		Metadata: entity.Metadata{
			Audit: &entity.AuditMeta{Summary: "eligible", CompletedAt: time.Now()},
		},
	}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	path, err := svc.GenerateAuditReport(ctx, "d1")
	if err != nil {
		t.Fatalf("GenerateAuditReport() failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("report file missing: %v", err)
	}
}

func TestGenerateAuditReport_BeforeAudit(t *testing.T) {
	svc, repo := newReportFixture(t)
	ctx := context.Background()

	d := &entity.Dossier{ID: "d1", ClientID: "client-1", Status: domainwf.StatusAuditInProgress}
	if err := repo.Create(ctx, d); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	_, err := svc.GenerateAuditReport(ctx, "d1")
	if !errors.Is(err, domainwf.ErrInvalidTransition) {
		t.Errorf("GenerateAuditReport() error = %v, want ErrInvalidTransition", err)
	}
}

func TestGenerateAuditReport_NotFound(t *testing.T) {
	svc, _ := newReportFixture(t)

	_, err := svc.GenerateAuditReport(context.Background(), "missing")
	if !errors.Is(err, ErrDossierNotFound) {
		t.Errorf("GenerateAuditReport() error = %v, want ErrDossierNotFound", err)
	}
}
