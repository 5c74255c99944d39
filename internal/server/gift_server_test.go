package server_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gift_tracker/internal/domain"
	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/domain/value"
	"gift_tracker/internal/export"
	"gift_tracker/internal/infrastructure/feed"
	"gift_tracker/internal/server"
	"gift_tracker/internal/worker"
	"gift_tracker/pkg/errcodes"
	"gift_tracker/pkg/httpx"
	"gift_tracker/pkg/rest"
	"gift_tracker/pkg/tests"
)

type trackerStub struct {
	records   []entity.GiftRecord
	totals    map[string]int64
	assignErr error

	created []entity.GiftRecord
}

func (s *trackerStub) RecordGift(_ context.Context, record *entity.GiftRecord) error {
	record.ID = int64(len(s.created) + 1)
	record.CreatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.created = append(s.created, *record)

	return nil
}

func (s *trackerStub) ListGifts(_ context.Context) ([]entity.GiftRecord, error) {
	return s.records, nil
}

func (s *trackerStub) AssignRecipient(_ context.Context, id int64, name string) (*entity.GiftRecord, error) {
	if s.assignErr != nil {
		return nil, s.assignErr
	}

	recipient, err := value.ParseRecipient(name)
	if err != nil {
		return nil, err
	}

	return &entity.GiftRecord{ID: id, Recipient: recipient}, nil
}

func (s *trackerStub) TypeTotals(_ context.Context) (map[string]int64, error) {
	return s.totals, nil
}

func (s *trackerStub) BuildExport(_ context.Context) (*excelize.File, error) {
	return export.BuildWorkbook(s.records, s.totals)
}

type statusStub struct {
	status feed.Status
}

func (s statusStub) Status() feed.Status { return s.status }

type enqueuerStub struct {
	queue    string
	taskType string
}

func (e *enqueuerStub) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.taskType = task.Type()

	for _, opt := range opts {
		if opt.Type() == asynq.QueueOpt {
			e.queue, _ = opt.Value().(string)
		}
	}

	return &asynq.TaskInfo{ID: "task-123", Type: task.Type()}, nil
}

// newAPIClient logs full request/response dumps, which makes failed
// assertions readable in test output.
func newAPIClient(ts *httptest.Server) tests.APIClient {
	httpClient := &http.Client{
		Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, httpx.WithLogFieldMaxLen(2048)),
	}

	return tests.NewAPIClient(ts.URL, httpClient)
}

func newTestServer(t *testing.T, svc *trackerStub, status feed.Status, snapshots *enqueuerStub) *httptest.Server {
	t.Helper()

	if snapshots == nil {
		snapshots = &enqueuerStub{}
	}

	router := chi.NewRouter()
	server.NewServer(server.NewGiftServer(svc, statusStub{status: status}, snapshots, "export")).RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return ts
}

func TestPostGift(t *testing.T) {
	rq := require.New(t)

	svc := &trackerStub{}
	ts := newTestServer(t, svc, feed.StatusConnected, nil)
	client := newAPIClient(ts)

	request := rest.CreateGiftRecordRequest{
		Sender:      "viewer",
		GiftName:    "Rose",
		GiftImage:   "pic",
		RepeatCount: 3,
		Count:       3,
		Recipient:   "Simi",
	}

	var created rest.GiftRecord

	resp, err := client.Post(context.Background(), "/api/gifts", nil, request, &created, nil)
	rq.NoError(err)
	rq.Equal(http.StatusCreated, resp.StatusCode)

	rq.Equal(int64(1), created.ID)
	rq.Equal("viewer", created.Sender)
	rq.Equal("Rose", created.GiftName)
	rq.Equal(3, created.RepeatCount)
	rq.Equal(int64(3), created.Count)
	rq.Equal("Simi", created.Recipient)
	rq.NotEmpty(created.Timestamp)

	rq.Len(svc.created, 1)
	rq.Equal(value.Recipient("Simi"), svc.created[0].Recipient)
}

func TestPostGiftRejected(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		wantCode rest.ErrorCode
	}{
		{name: "Malformed JSON", body: `{"sender":`, wantCode: "ValidationError"},
		{name: "Missing sender", body: `{"giftName":"Rose","repeatCount":1,"count":1}`, wantCode: "ValidationError"},
		{name: "Zero repeat count", body: `{"sender":"a","giftName":"Rose","repeatCount":0,"count":1}`, wantCode: "ValidationError"},
		{name: "Negative count", body: `{"sender":"a","giftName":"Rose","repeatCount":1,"count":-1}`, wantCode: "ValidationError"},
		{name: "Unknown recipient", body: `{"sender":"a","giftName":"Rose","repeatCount":1,"count":1,"recipient":"Bob"}`, wantCode: "InvalidRecipient"},
	}

	svc := &trackerStub{}
	ts := newTestServer(t, svc, feed.StatusConnected, nil)
	client := newAPIClient(ts)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			var apiErr rest.Error

			resp, err := client.PostJSON(context.Background(), "/api/gifts", nil, tc.body, nil, &apiErr)
			rq.NoError(err)
			rq.Equal(http.StatusBadRequest, resp.StatusCode)
			rq.Equal(tc.wantCode, apiErr.Code)
			rq.Empty(svc.created)
		})
	}
}

func TestListGifts(t *testing.T) {
	rq := require.New(t)

	svc := &trackerStub{
		records: []entity.GiftRecord{
			{ID: 2, Sender: "b", GiftName: "Potato", RepeatCount: 1, Count: 5, Recipient: "Hana"},
			{ID: 1, Sender: "a", GiftName: "Rose", RepeatCount: 3, Count: 3},
		},
	}
	ts := newTestServer(t, svc, feed.StatusConnected, nil)
	client := newAPIClient(ts)

	var records []rest.GiftRecord

	resp, err := client.Get(context.Background(), "/api/gifts", nil, &records, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)

	rq.Len(records, 2)
	rq.Equal(int64(2), records[0].ID)
	rq.Equal("Hana", records[0].Recipient)
	rq.Equal("", records[1].Recipient)
}

func TestPutRecipient(t *testing.T) {
	rq := require.New(t)

	svc := &trackerStub{}
	ts := newTestServer(t, svc, feed.StatusConnected, nil)
	client := newAPIClient(ts)

	var updated rest.GiftRecord

	resp, err := client.Put(
		context.Background(),
		"/api/gifts/7",
		nil,
		rest.AssignRecipientRequest{Recipient: "Hana"},
		&updated,
		nil,
	)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(int64(7), updated.ID)
	rq.Equal("Hana", updated.Recipient)
}

func TestPutRecipientErrors(t *testing.T) {
	testCases := []struct {
		name       string
		id         string
		recipient  string
		assignErr  error
		wantStatus int
		wantCode   rest.ErrorCode
	}{
		{
			name:       "Non-numeric id",
			id:         "abc",
			recipient:  "Hana",
			wantStatus: http.StatusBadRequest,
			wantCode:   "InvalidGiftRecordID",
		},
		{
			name:       "Unknown recipient",
			id:         "7",
			recipient:  "Bob",
			wantStatus: http.StatusBadRequest,
			wantCode:   "InvalidRecipient",
		},
		{
			name:       "Record not found",
			id:         "404",
			recipient:  "Hana",
			assignErr:  domain.NewNotFound(errcodes.GiftRecordNotFound, "gift record not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   "GiftRecordNotFound",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			svc := &trackerStub{assignErr: tc.assignErr}
			ts := newTestServer(t, svc, feed.StatusConnected, nil)
			client := newAPIClient(ts)

			var apiErr rest.Error

			resp, err := client.Put(
				context.Background(),
				"/api/gifts/"+tc.id,
				nil,
				rest.AssignRecipientRequest{Recipient: tc.recipient},
				nil,
				&apiErr,
			)
			rq.NoError(err)
			rq.Equal(tc.wantStatus, resp.StatusCode)
			rq.Equal(tc.wantCode, apiErr.Code)
		})
	}
}

func TestGetGiftTypes(t *testing.T) {
	rq := require.New(t)

	svc := &trackerStub{totals: map[string]int64{"Rose": 5, "Potato": 2}}
	ts := newTestServer(t, svc, feed.StatusConnected, nil)
	client := newAPIClient(ts)

	var totals map[string]int64

	resp, err := client.Get(context.Background(), "/api/gifts/types", nil, &totals, nil)
	rq.NoError(err)
	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(map[string]int64{"Rose": 5, "Potato": 2}, totals)
}

func TestGetStatus(t *testing.T) {
	testCases := []struct {
		status feed.Status
		want   string
	}{
		{status: feed.StatusDisconnected, want: "Disconnected"},
		{status: feed.StatusConnecting, want: "Connecting"},
		{status: feed.StatusConnected, want: "Connected"},
		{status: feed.StatusFailed, want: "Connection Failed"},
	}

	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			rq := require.New(t)

			ts := newTestServer(t, &trackerStub{}, tc.status, nil)
			client := newAPIClient(ts)

			var status rest.FeedStatus

			resp, err := client.Get(context.Background(), "/api/status", nil, &status, nil)
			rq.NoError(err)
			rq.Equal(http.StatusOK, resp.StatusCode)
			rq.Equal(tc.want, status.Status)
		})
	}
}

func TestGetExport(t *testing.T) {
	rq := require.New(t)

	svc := &trackerStub{
		records: []entity.GiftRecord{
			{ID: 1, Sender: "a", GiftName: "Rose", Count: 5, Recipient: "Simi"},
		},
		totals: map[string]int64{"Potato": 2},
	}
	ts := newTestServer(t, svc, feed.StatusConnected, nil)

	resp, err := ts.Client().Get(ts.URL + "/api/gifts/export")
	rq.NoError(err)
	defer resp.Body.Close()

	rq.Equal(http.StatusOK, resp.StatusCode)
	rq.Equal(
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		resp.Header.Get("Content-Type"),
	)
	rq.Contains(resp.Header.Get("Content-Disposition"), export.FileName)

	body, err := io.ReadAll(resp.Body)
	rq.NoError(err)

	workbook, err := excelize.OpenReader(bytes.NewReader(body))
	rq.NoError(err)
	defer workbook.Close()

	header, err := workbook.GetCellValue(export.SheetName, "A1")
	rq.NoError(err)
	rq.Equal("Simi", header)

	count, err := workbook.GetCellValue(export.SheetName, "A2")
	rq.NoError(err)
	rq.Equal("5", count)
}

func TestPostExportSnapshot(t *testing.T) {
	rq := require.New(t)

	snapshots := &enqueuerStub{}
	ts := newTestServer(t, &trackerStub{}, feed.StatusConnected, snapshots)
	client := newAPIClient(ts)

	var accepted rest.SnapshotAccepted

	resp, err := client.Post(context.Background(), "/api/gifts/export/snapshot", nil, nil, &accepted, nil)
	rq.NoError(err)
	rq.Equal(http.StatusAccepted, resp.StatusCode)
	rq.Equal("task-123", accepted.TaskID)
	rq.Equal("export", snapshots.queue)
	rq.Equal(worker.TaskExportSnapshot, snapshots.taskType)
}
