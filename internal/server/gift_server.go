package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/xuri/excelize/v2"

	"gift_tracker/internal/domain"
	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/export"
	"gift_tracker/internal/infrastructure/feed"
	"gift_tracker/internal/worker"
	"gift_tracker/pkg/errcodes"
	"gift_tracker/pkg/httpx/reply"
	"gift_tracker/pkg/httpx/req"
	"gift_tracker/pkg/rest"
)

type trackerService interface {
	RecordGift(ctx context.Context, record *entity.GiftRecord) error
	ListGifts(ctx context.Context) ([]entity.GiftRecord, error)
	AssignRecipient(ctx context.Context, id int64, name string) (*entity.GiftRecord, error)
	TypeTotals(ctx context.Context) (map[string]int64, error)
	BuildExport(ctx context.Context) (*excelize.File, error)
}

type statusProvider interface {
	Status() feed.Status
}

type snapshotEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type GiftServer struct {
	trackerService trackerService
	feedStatus     statusProvider
	snapshots      snapshotEnqueuer
	snapshotQueue  string
}

func NewGiftServer(
	trackerService trackerService,
	feedStatus statusProvider,
	snapshots snapshotEnqueuer,
	snapshotQueue string,
) GiftServer {
	return GiftServer{
		trackerService: trackerService,
		feedStatus:     feedStatus,
		snapshots:      snapshots,
		snapshotQueue:  snapshotQueue,
	}
}

func (s GiftServer) postGift(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CreateGiftRecordRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	record, err := newDomainGiftRecord(request)
	if err != nil {
		return fmt.Errorf("newDomainGiftRecord: %w", err)
	}

	if err := s.trackerService.RecordGift(ctx, &record); err != nil {
		return fmt.Errorf("trackerService.RecordGift: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTGiftRecord(record))

	return nil
}

func (s GiftServer) listGifts(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	records, err := s.trackerService.ListGifts(ctx)
	if err != nil {
		return fmt.Errorf("trackerService.ListGifts: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTGiftRecords(records))

	return nil
}

func (s GiftServer) putRecipient(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseGiftRecordID(r.PathValue("id"))
	if err != nil {
		return err
	}

	var request rest.AssignRecipientRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	record, err := s.trackerService.AssignRecipient(ctx, id, request.Recipient)
	if err != nil {
		return fmt.Errorf("trackerService.AssignRecipient: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTGiftRecord(*record))

	return nil
}

func (s GiftServer) getGiftTypes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	totals, err := s.trackerService.TypeTotals(ctx)
	if err != nil {
		return fmt.Errorf("trackerService.TypeTotals: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, totals)

	return nil
}

func (s GiftServer) getExport(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	workbook, err := s.trackerService.BuildExport(ctx)
	if err != nil {
		return fmt.Errorf("trackerService.BuildExport: %w", err)
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)

	if err := workbook.Write(w); err != nil {
		return fmt.Errorf("workbook.Write: %w", err)
	}

	return nil
}

func (s GiftServer) postExportSnapshot(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	info, err := s.snapshots.EnqueueContext(ctx, worker.NewSnapshotTask(), asynq.Queue(s.snapshotQueue))
	if err != nil {
		return fmt.Errorf("snapshots.EnqueueContext: %w", err)
	}

	reply.JSON(ctx, w, http.StatusAccepted, rest.SnapshotAccepted{TaskID: info.ID})

	return nil
}

func (s GiftServer) getStatus(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, rest.FeedStatus{
		Status: s.feedStatus.Status().String(),
	})

	return nil
}

func parseGiftRecordID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewInvalidArgument(errcodes.InvalidGiftRecordID, "invalid gift record id")
	}

	return id, nil
}
