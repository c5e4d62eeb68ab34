package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/profitum/dossier-engine/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Database: config.DatabaseConfig{
			Path:            filepath.Join(dir, "dossiers.db"),
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
			MigrationsDir:   "../../migrations",
		},
		Workflow: config.WorkflowConfig{LockTimeout: time.Second},
		Report:   config.ReportConfig{OutputDir: filepath.Join(dir, "reports")},
	}
}

func TestContainer_StartAndClose(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !c.Ready() {
		t.Error("Ready() = false after Start()")
	}
	svcs := c.Services()
	if svcs == nil || svcs.Dossier == nil || svcs.Assignment == nil || svcs.Notification == nil || svcs.Report == nil {
		t.Fatalf("Services() incomplete: %+v", svcs)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if c.Ready() {
		t.Error("Ready() = true after Close()")
	}
}

func TestContainer_StartFailsWhenReportDirUnusable(t *testing.T) {
	cfg := testConfig(t)

	// A regular file where the output directory's parent should be makes
	// MkdirAll fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	cfg.Report.OutputDir = filepath.Join(blocker, "reports")

	c, err := NewContainer(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail when the report output directory cannot be created")
	}
	if c.Ready() {
		t.Error("Ready() = true after failed Start()")
	}
}
