package tracker_test

import (
	"context"
	"errors"
	"testing"

	"git.appkode.ru/pub/go/failure"
	"github.com/stretchr/testify/require"

	"gift_tracker/internal/domain"
	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/service/tracker"
	"gift_tracker/internal/domain/value"
	"gift_tracker/internal/export"
	"gift_tracker/pkg/errcodes"
)

type repoStub struct {
	records []entity.GiftRecord
	totals  map[string]int64
	total   int64
	err     error

	created          []entity.GiftRecord
	updatedID        int64
	updatedRecipient value.Recipient
	totalsQueries    int
}

func (r *repoStub) Create(_ context.Context, record *entity.GiftRecord) error {
	if r.err != nil {
		return r.err
	}

	record.ID = int64(len(r.created) + 1)
	r.created = append(r.created, *record)

	return nil
}

func (r *repoStub) List(_ context.Context) ([]entity.GiftRecord, error) {
	if r.err != nil {
		return nil, r.err
	}

	return r.records, nil
}

func (r *repoStub) UpdateRecipient(_ context.Context, id int64, recipient value.Recipient) (*entity.GiftRecord, error) {
	if r.err != nil {
		return nil, r.err
	}

	r.updatedID = id
	r.updatedRecipient = recipient

	return &entity.GiftRecord{ID: id, Recipient: recipient}, nil
}

func (r *repoStub) SumRepeatCountByType(_ context.Context) (map[string]int64, error) {
	if r.err != nil {
		return nil, r.err
	}

	r.totalsQueries++

	return r.totals, nil
}

func (r *repoStub) SumCount(_ context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}

	return r.total, nil
}

type cacheStub struct {
	totals map[string]int64
	hit    bool

	sets          int
	invalidations int
}

func (c *cacheStub) GetTypeTotals(_ context.Context) (map[string]int64, bool) {
	return c.totals, c.hit
}

func (c *cacheStub) SetTypeTotals(_ context.Context, totals map[string]int64) {
	c.totals = totals
	c.sets++
}

func (c *cacheStub) Invalidate(_ context.Context) {
	c.hit = false
	c.invalidations++
}

func TestRecordGiftInvalidatesTotals(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{}
	cache := &cacheStub{hit: true, totals: map[string]int64{"Rose": 1}}
	svc := tracker.NewTrackerService(repo).WithTotalsCache(cache)

	record := entity.GiftRecord{Sender: "viewer", GiftName: "Rose", RepeatCount: 3, Count: 3}
	rq.NoError(svc.RecordGift(context.Background(), &record))

	rq.Len(repo.created, 1)
	rq.Equal(1, cache.invalidations)
	rq.NotZero(record.ID)
}

func TestRecordGiftRepositoryError(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{err: errors.New("insert failed")}
	cache := &cacheStub{}
	svc := tracker.NewTrackerService(repo).WithTotalsCache(cache)

	err := svc.RecordGift(context.Background(), &entity.GiftRecord{})
	rq.Error(err)
	rq.Zero(cache.invalidations)
}

func TestAssignRecipient(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{}
	svc := tracker.NewTrackerService(repo)

	record, err := svc.AssignRecipient(context.Background(), 7, "Hana")
	rq.NoError(err)
	rq.Equal(int64(7), record.ID)
	rq.Equal(value.Recipient("Hana"), record.Recipient)
	rq.Equal(int64(7), repo.updatedID)
}

func TestAssignRecipientUnassign(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{}
	svc := tracker.NewTrackerService(repo)

	record, err := svc.AssignRecipient(context.Background(), 7, "")
	rq.NoError(err)
	rq.Equal(value.RecipientUnassigned, record.Recipient)
	rq.Equal(value.RecipientUnassigned, repo.updatedRecipient)
}

func TestAssignRecipientUnknownName(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{}
	svc := tracker.NewTrackerService(repo)

	_, err := svc.AssignRecipient(context.Background(), 7, "Bob")
	rq.Error(err)
	rq.True(failure.IsInvalidArgumentError(err))
	rq.Zero(repo.updatedID)
}

func TestAssignRecipientNotFound(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{err: domain.NewNotFound(errcodes.GiftRecordNotFound, "gift record not found")}
	svc := tracker.NewTrackerService(repo)

	_, err := svc.AssignRecipient(context.Background(), 404, "Hana")
	rq.Error(err)
	rq.True(failure.IsNotFoundError(err))
}

func TestTypeTotalsCacheHit(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{totals: map[string]int64{"Rose": 100}}
	cache := &cacheStub{hit: true, totals: map[string]int64{"Rose": 5}}
	svc := tracker.NewTrackerService(repo).WithTotalsCache(cache)

	totals, err := svc.TypeTotals(context.Background())
	rq.NoError(err)
	rq.Equal(map[string]int64{"Rose": 5}, totals)
	rq.Zero(repo.totalsQueries)
}

func TestTypeTotalsCacheMiss(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{totals: map[string]int64{"Rose": 5, "Potato": 2}}
	cache := &cacheStub{}
	svc := tracker.NewTrackerService(repo).WithTotalsCache(cache)

	totals, err := svc.TypeTotals(context.Background())
	rq.NoError(err)
	rq.Equal(map[string]int64{"Rose": 5, "Potato": 2}, totals)
	rq.Equal(1, repo.totalsQueries)
	rq.Equal(1, cache.sets)
}

func TestTypeTotalsWithoutCache(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{totals: map[string]int64{"Rose": 5}}
	svc := tracker.NewTrackerService(repo)

	totals, err := svc.TypeTotals(context.Background())
	rq.NoError(err)
	rq.Equal(map[string]int64{"Rose": 5}, totals)
}

func TestGrandTotal(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{total: 112}
	svc := tracker.NewTrackerService(repo)

	total, err := svc.GrandTotal(context.Background())
	rq.NoError(err)
	rq.Equal(int64(112), total)
}

func TestBuildExport(t *testing.T) {
	rq := require.New(t)

	repo := &repoStub{
		records: []entity.GiftRecord{
			{Sender: "viewer", GiftName: "Rose", Count: 5, Recipient: "Simi"},
		},
		totals: map[string]int64{"Potato": 3},
	}
	svc := tracker.NewTrackerService(repo)

	workbook, err := svc.BuildExport(context.Background())
	rq.NoError(err)
	defer workbook.Close()

	header, err := workbook.GetCellValue(export.SheetName, "A1")
	rq.NoError(err)
	rq.Equal("Simi", header)

	count, err := workbook.GetCellValue(export.SheetName, "A2")
	rq.NoError(err)
	rq.Equal("5", count)

	typeTotal, err := workbook.GetCellValue(export.SheetName, "H2")
	rq.NoError(err)
	rq.Equal("3", typeTotal)
}
