package service

import (
	"context"
	"fmt"

	"github.com/profitum/dossier-engine/internal/application/dispatcher"
	"github.com/profitum/dossier-engine/internal/application/port"
	"github.com/profitum/dossier-engine/internal/application/report"
	"github.com/profitum/dossier-engine/internal/domain/event"
	domainwf "github.com/profitum/dossier-engine/internal/domain/workflow"
)

// ReportService produces the expert audit report workbook for a dossier.
type ReportService interface {
	GenerateAuditReport(ctx context.Context, dossierID string) (string, error)
}

type reportServiceImpl struct {
	dossierRepo port.DossierRepository
	docs        port.DocumentStorage
	builder     *report.WorkbookBuilder
	dispatcher  dispatcher.Dispatcher
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	dossierRepo port.DossierRepository,
	docs port.DocumentStorage,
	builder *report.WorkbookBuilder,
	disp dispatcher.Dispatcher,
	logger Logger,
) ReportService {
	return &reportServiceImpl{
		dossierRepo: dossierRepo,
		docs:        docs,
		builder:     builder,
		dispatcher:  disp,
		logger:      logger,
	}
}

// GenerateAuditReport builds the workbook and returns its path. The report is
// only available once the audit outcome is recorded.
func (s *reportServiceImpl) GenerateAuditReport(ctx context.Context, dossierID string) (string, error) {
	d, err := s.dossierRepo.GetByID(ctx, dossierID)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", fmt.Errorf("%w: %s", ErrDossierNotFound, dossierID)
	}

	if !d.Status.AuditReached() {
		return "", fmt.Errorf("%w: audit report requires a completed audit, dossier is %s",
			domainwf.ErrInvalidTransition, d.Status)
	}

	refs, err := s.docs.ListByDossier(ctx, dossierID)
	if err != nil {
		return "", fmt.Errorf("list documents: %w", err)
	}

	path, err := s.builder.Build(d, refs)
	if err != nil {
		return "", err
	}

	s.logger.Info("Audit report generated",
		"dossier_id", dossierID,
		"path", path,
	)
	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeReportGenerated, dossierID, map[string]interface{}{
		"path": path,
	}))

	return path, nil
}
