package tracker

import (
	"context"
	"fmt"

	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
	"gift_tracker/internal/export"
	"gift_tracker/pkg/contextx"

	"github.com/xuri/excelize/v2"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type GiftRecordRepository interface {
	Create(ctx context.Context, record *entity.GiftRecord) error
	List(ctx context.Context) ([]entity.GiftRecord, error)
	UpdateRecipient(ctx context.Context, id int64, recipient value.Recipient) (*entity.GiftRecord, error)
	SumRepeatCountByType(ctx context.Context) (map[string]int64, error)
	SumCount(ctx context.Context) (int64, error)
}

// TotalsCache keeps the per-type aggregate between requests. A miss or a
// cache failure always falls through to the repository.
type TotalsCache interface {
	GetTypeTotals(ctx context.Context) (map[string]int64, bool)
	SetTypeTotals(ctx context.Context, totals map[string]int64)
	Invalidate(ctx context.Context)
}

// TrackerService is the application service behind both the HTTP API and
// the feed ingestor.
type TrackerService struct {
	records     GiftRecordRepository
	totalsCache TotalsCache
}

func NewTrackerService(records GiftRecordRepository) *TrackerService {
	return &TrackerService{
		records: records,
	}
}

func (s *TrackerService) WithTotalsCache(cache TotalsCache) *TrackerService {
	s.totalsCache = cache
	return s
}

// RecordGift persists a new record. Count is stored exactly as given and is
// immutable from here on.
func (s *TrackerService) RecordGift(ctx context.Context, record *entity.GiftRecord) error {
	if err := s.records.Create(ctx, record); err != nil {
		return fmt.Errorf("records.Create: %w", err)
	}

	if s.totalsCache != nil {
		s.totalsCache.Invalidate(ctx)
	}

	return nil
}

// ListGifts returns every record, most recent first.
func (s *TrackerService) ListGifts(ctx context.Context) ([]entity.GiftRecord, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("records.List: %w", err)
	}

	return records, nil
}

// AssignRecipient reassigns a record to one of the fixed recipients (or back
// to unassigned). Last write wins.
func (s *TrackerService) AssignRecipient(ctx context.Context, id int64, name string) (*entity.GiftRecord, error) {
	recipient, err := value.ParseRecipient(name)
	if err != nil {
		return nil, fmt.Errorf("value.ParseRecipient: %w", err)
	}

	record, err := s.records.UpdateRecipient(ctx, id, recipient)
	if err != nil {
		return nil, fmt.Errorf("records.UpdateRecipient: %w", err)
	}

	return record, nil
}

// TypeTotals returns the sum of repeatCount grouped by gift type. The
// aggregate is derived, not stored; the cache only bounds how often the
// GROUP BY runs.
func (s *TrackerService) TypeTotals(ctx context.Context) (map[string]int64, error) {
	if s.totalsCache != nil {
		if totals, ok := s.totalsCache.GetTypeTotals(ctx); ok {
			return totals, nil
		}
	}

	totals, err := s.records.SumRepeatCountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("records.SumRepeatCountByType: %w", err)
	}

	if s.totalsCache != nil {
		s.totalsCache.SetTypeTotals(ctx, totals)
	}

	return totals, nil
}

// GrandTotal is the sum of count over all records regardless of recipient.
func (s *TrackerService) GrandTotal(ctx context.Context) (int64, error) {
	total, err := s.records.SumCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("records.SumCount: %w", err)
	}

	return total, nil
}

// BuildExport renders the current state into the "Gifts" workbook. Reads
// only; calling it twice on unchanged state yields identical content.
func (s *TrackerService) BuildExport(ctx context.Context) (*excelize.File, error) {
	records, err := s.ListGifts(ctx)
	if err != nil {
		return nil, err
	}

	totals, err := s.TypeTotals(ctx)
	if err != nil {
		return nil, err
	}

	workbook, err := export.BuildWorkbook(records, totals)
	if err != nil {
		return nil, fmt.Errorf("export.BuildWorkbook: %w", err)
	}

	logger(ctx).Debug("export built", "records", len(records))

	return workbook, nil
}
