package report

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/domain/entity"
	"github.com/profitum/dossier-engine/internal/domain/workflow"
)

func auditedDossier() *entity.Dossier {
	expertID := "expert-1"
	montantFinal := 15000.0
	return &entity.Dossier{
		ID:            "d1",
		ClientID:      "client-1",
		ProduitID:     "CIR",
		ExpertID:      &expertID,
		Status:        workflow.StatusAuditCompleted,
		MontantEstime: 10000,
		MontantFinal:  &montantFinal,
		Metadata: entity.Metadata{
			Audit: &entity.AuditMeta{
				Summary:     "CIR eligible on 2 projects",
				Findings:    []string{"project A qualifies", "project B partially"},
				CompletedAt: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestWorkbookBuilder_Build(t *testing.T) {
	builder, err := NewWorkbookBuilder(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewWorkbookBuilder() failed: %v", err)
	}

	now := time.Now()
	docs := []*entity.DocumentRef{
		{Category: entity.DocCategoryPayrollStatements, Filename: "payroll.pdf", Uploaded: true, UploadedAt: &now},
		{Category: entity.DocCategoryExpenseReceipts, Filename: "receipts.pdf"},
	}

	path, err := builder.Build(auditedDossier(), docs)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("workbook has sheets %v, want Summary, Findings, Documents", sheets)
	}

	cell := func(sheet, ref string) string {
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("read %s!%s: %v", sheet, ref, err)
		}
		return v
	}

	if got := cell("Summary", "B3"); got != "d1" {
		t.Errorf("Summary!B3 = %q, want d1", got)
	}
	if got := cell("Summary", "B7"); got != "expert-1" {
		t.Errorf("Summary!B7 = %q, want expert-1", got)
	}
	if got := cell("Summary", "B10"); got != "15000.00" {
		t.Errorf("Summary!B10 = %q, want 15000.00", got)
	}
	if got := cell("Findings", "B1"); got != "CIR eligible on 2 projects" {
		t.Errorf("Findings!B1 = %q", got)
	}
	if got := cell("Findings", "B4"); got != "project A qualifies" {
		t.Errorf("Findings!B4 = %q", got)
	}
	if got := cell("Documents", "A2"); got != entity.DocCategoryPayrollStatements {
		t.Errorf("Documents!A2 = %q", got)
	}
	if got := cell("Documents", "C3"); got != "" {
		t.Errorf("Documents!C3 = %q, want empty for a non-uploaded document", got)
	}
}

func TestWorkbookBuilder_BuildWithoutAuditMetadata(t *testing.T) {
	builder, err := NewWorkbookBuilder(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewWorkbookBuilder() failed: %v", err)
	}

	d := auditedDossier()
	d.Metadata.Audit = nil
	d.MontantFinal = nil

	path, err := builder.Build(d, nil)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Summary", "B10")
	if err != nil {
		t.Fatalf("read Summary!B10: %v", err)
	}
	if got != "" {
		t.Errorf("Summary!B10 = %q, want empty without an audited amount", got)
	}
}
