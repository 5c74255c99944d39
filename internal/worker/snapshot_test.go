package worker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/export"
	"gift_tracker/internal/worker"
)

type exportBuilderStub struct {
	records []entity.GiftRecord
	err     error
}

func (s exportBuilderStub) BuildExport(_ context.Context) (*excelize.File, error) {
	if s.err != nil {
		return nil, s.err
	}

	return export.BuildWorkbook(s.records, nil)
}

func TestSnapshotWorkerWritesWorkbook(t *testing.T) {
	rq := require.New(t)

	dir := filepath.Join(t.TempDir(), "snapshots")
	builder := exportBuilderStub{
		records: []entity.GiftRecord{{Sender: "a", GiftName: "Rose", Count: 5, Recipient: "Simi"}},
	}

	snapshotWorker := worker.NewSnapshotWorker(builder, dir)
	rq.NoError(snapshotWorker.Handle(context.Background(), worker.NewSnapshotTask()))

	entries, err := os.ReadDir(dir)
	rq.NoError(err)
	rq.Len(entries, 1)
	rq.True(strings.HasPrefix(entries[0].Name(), "gifts_"))
	rq.True(strings.HasSuffix(entries[0].Name(), ".xlsx"))

	workbook, err := excelize.OpenFile(filepath.Join(dir, entries[0].Name()))
	rq.NoError(err)
	defer workbook.Close()

	header, err := workbook.GetCellValue(export.SheetName, "A1")
	rq.NoError(err)
	rq.Equal("Simi", header)
}

func TestSnapshotWorkerBuildFailure(t *testing.T) {
	rq := require.New(t)

	dir := filepath.Join(t.TempDir(), "snapshots")
	builder := exportBuilderStub{err: errors.New("db down")}

	snapshotWorker := worker.NewSnapshotWorker(builder, dir)
	rq.Error(snapshotWorker.Handle(context.Background(), worker.NewSnapshotTask()))

	_, err := os.ReadDir(dir)
	rq.True(os.IsNotExist(err))
}

func TestNewSnapshotTask(t *testing.T) {
	rq := require.New(t)

	task := worker.NewSnapshotTask()
	rq.Equal(worker.TaskExportSnapshot, task.Type())
}
