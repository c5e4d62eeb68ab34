package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/domain/entity"
)

const (
	summarySheet  = "Summary"
	findingsSheet = "Findings"
	docsSheet     = "Documents"
)

// WorkbookBuilder renders an audit report workbook for a dossier. Reports are
// only meaningful once an audit result exists; the caller is responsible for
// checking that before asking for one.
type WorkbookBuilder struct {
	outputDir string
	logger    *zap.Logger
}

// NewWorkbookBuilder creates a new workbook builder
func NewWorkbookBuilder(outputDir string, logger *zap.Logger) (*WorkbookBuilder, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &WorkbookBuilder{
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// Build writes the workbook for the given dossier and returns its path
func (b *WorkbookBuilder) Build(d *entity.Dossier, docs []*entity.DocumentRef) (string, error) {
	b.logger.Info("Building audit report workbook",
		zap.String("dossier_id", d.ID),
		zap.String("status", d.Status.String()))

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), summarySheet)

	b.fillSummary(f, d)
	b.fillFindings(f, d)
	b.fillDocuments(f, docs)

	outputPath := filepath.Join(b.outputDir, fmt.Sprintf("audit-report-%s.xlsx", d.ID))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save report workbook: %w", err)
	}

	b.logger.Info("Audit report workbook written",
		zap.String("output_path", outputPath))

	return outputPath, nil
}

func (b *WorkbookBuilder) fillSummary(f *excelize.File, d *entity.Dossier) {
	b.setCell(f, summarySheet, "A1", "Audit Report")
	b.setCell(f, summarySheet, "A3", "Dossier")
	b.setCell(f, summarySheet, "B3", d.ID)
	b.setCell(f, summarySheet, "A4", "Client")
	b.setCell(f, summarySheet, "B4", d.ClientID)
	b.setCell(f, summarySheet, "A5", "Product")
	b.setCell(f, summarySheet, "B5", d.ProduitID)
	b.setCell(f, summarySheet, "A6", "Status")
	b.setCell(f, summarySheet, "B6", d.Status.String())

	if d.ExpertID != nil {
		b.setCell(f, summarySheet, "A7", "Expert")
		b.setCell(f, summarySheet, "B7", *d.ExpertID)
	}

	b.setCell(f, summarySheet, "A9", "Estimated amount")
	b.setCell(f, summarySheet, "B9", fmt.Sprintf("%.2f", d.MontantEstime))
	b.setCell(f, summarySheet, "A10", "Audited amount")
	if d.MontantFinal != nil {
		b.setCell(f, summarySheet, "B10", fmt.Sprintf("%.2f", *d.MontantFinal))
	}

	if d.Metadata.Audit != nil && !d.Metadata.Audit.CompletedAt.IsZero() {
		b.setCell(f, summarySheet, "A11", "Audit completed")
		b.setCell(f, summarySheet, "B11", d.Metadata.Audit.CompletedAt.Format("2006-01-02"))
	}
	if d.DateAuditValidatedByClient != nil {
		b.setCell(f, summarySheet, "A12", "Validated by client")
		b.setCell(f, summarySheet, "B12", d.DateAuditValidatedByClient.Format("2006-01-02"))
	}

	b.setCell(f, summarySheet, "A14", "Generated")
	b.setCell(f, summarySheet, "B14", time.Now().Format("2006-01-02 15:04"))
}

func (b *WorkbookBuilder) fillFindings(f *excelize.File, d *entity.Dossier) {
	if _, err := f.NewSheet(findingsSheet); err != nil {
		b.logger.Warn("Failed to create findings sheet", zap.Error(err))
		return
	}

	b.setCell(f, findingsSheet, "A1", "Summary")
	b.setCell(f, findingsSheet, "A3", "Findings")

	if d.Metadata.Audit == nil {
		return
	}
	b.setCell(f, findingsSheet, "B1", d.Metadata.Audit.Summary)
	for i, finding := range d.Metadata.Audit.Findings {
		row := 4 + i
		b.setCell(f, findingsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%d", i+1))
		b.setCell(f, findingsSheet, fmt.Sprintf("B%d", row), finding)
	}
}

func (b *WorkbookBuilder) fillDocuments(f *excelize.File, docs []*entity.DocumentRef) {
	if _, err := f.NewSheet(docsSheet); err != nil {
		b.logger.Warn("Failed to create documents sheet", zap.Error(err))
		return
	}

	b.setCell(f, docsSheet, "A1", "Category")
	b.setCell(f, docsSheet, "B1", "Filename")
	b.setCell(f, docsSheet, "C1", "Uploaded")

	for i, doc := range docs {
		row := 2 + i
		b.setCell(f, docsSheet, fmt.Sprintf("A%d", row), doc.Category)
		b.setCell(f, docsSheet, fmt.Sprintf("B%d", row), doc.Filename)
		if doc.UploadedAt != nil {
			b.setCell(f, docsSheet, fmt.Sprintf("C%d", row), doc.UploadedAt.Format("2006-01-02"))
		}
	}
}

// setCell sets a cell value, logging rather than failing on errors
func (b *WorkbookBuilder) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		b.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
