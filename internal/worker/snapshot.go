package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hibiken/asynq"
	"github.com/xuri/excelize/v2"
)

const TaskExportSnapshot = "export:snapshot"

type ExportBuilder interface {
	BuildExport(ctx context.Context) (*excelize.File, error)
}

// SnapshotWorker handles export:snapshot tasks by rendering the current
// workbook to the snapshots directory, so a long stream session keeps
// on-disk checkpoints without anyone pressing the export button.
type SnapshotWorker struct {
	service ExportBuilder
	dir     string
}

func NewSnapshotWorker(service ExportBuilder, dir string) *SnapshotWorker {
	return &SnapshotWorker{
		service: service,
		dir:     dir,
	}
}

func (w *SnapshotWorker) Handle(ctx context.Context, _ *asynq.Task) error {
	workbook, err := w.service.BuildExport(ctx)
	if err != nil {
		return fmt.Errorf("service.BuildExport: %w", err)
	}
	defer workbook.Close()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("gifts_%s.xlsx", time.Now().Format("20060102_150405")))

	if err := workbook.SaveAs(path); err != nil {
		return fmt.Errorf("workbook.SaveAs: %w", err)
	}

	logger(ctx).Info("export snapshot written", "path", path)

	return nil
}

// NewSnapshotTask builds the enqueueable task.
func NewSnapshotTask() *asynq.Task {
	return asynq.NewTask(TaskExportSnapshot, nil)
}
