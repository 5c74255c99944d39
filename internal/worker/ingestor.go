package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gift_tracker/internal/domain/entity"
	"gift_tracker/internal/infrastructure/feed"
	"gift_tracker/pkg/contextx"
	"gift_tracker/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type GiftRecorder interface {
	RecordGift(ctx context.Context, record *entity.GiftRecord) error
}

// Alert is emitted on connection trouble for the optional notifier.
// Attempt counts consecutive failed re-dials; 0 means an established
// connection broke mid-session.
type Alert struct {
	Status  feed.Status
	Attempt int
	Err     error
}

// Ingestor owns the single live connection to the gift-event feed and turns
// qualifying frames into persisted records. One connection handle, one
// outstanding reconnect timer, explicit lifecycle.
type Ingestor struct {
	service GiftRecorder
	dialer  feed.Dialer
	url     string
	policy  ReconnectPolicy
	alerts  chan<- Alert

	mu     sync.Mutex
	status feed.Status
	conn   feed.Conn

	// Control fields
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewIngestor(service GiftRecorder, dialer feed.Dialer, url string) *Ingestor {
	return &Ingestor{
		service: service,
		dialer:  dialer,
		url:     url,
		policy:  DefaultReconnectPolicy(),
	}
}

func (w *Ingestor) WithReconnectPolicy(policy ReconnectPolicy) *Ingestor {
	w.policy = policy
	return w
}

func (w *Ingestor) WithAlerts(alerts chan<- Alert) *Ingestor {
	w.alerts = alerts
	return w
}

// Status returns the current connection state.
func (w *Ingestor) Status() feed.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Start runs the ingestor in the background until Stop or ctx cancellation.
func (w *Ingestor) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("ingestor is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(runCtx).Error("ingestor stopped", logx.Error(err))
		}
	}()

	return nil
}

// Stop cancels the run loop and waits for it to finish. In-flight persistence
// calls already issued are not interrupted.
func (w *Ingestor) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Ingestor) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// Run drives the connection state machine until ctx is done:
// Disconnected -> Connecting -> Connected, back to Disconnected on close,
// to Failed on error, and in both cases a timed re-dial. Retries are
// unbounded unless the policy caps them.
func (w *Ingestor) Run(ctx context.Context) error {
	logger(ctx).Info("ingestor started", "url", w.url)

	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			w.setStatus(ctx, feed.StatusDisconnected)
			return err
		}

		conn, err := w.connect(ctx)
		if err != nil {
			attempt++
			w.setStatus(ctx, feed.StatusFailed)
			w.alert(feed.StatusFailed, attempt, err)
			logger(ctx).Error("feed connect failed", "attempt", attempt, logx.Error(err))

			if w.policy.Exhausted(attempt) {
				return fmt.Errorf("reconnect attempts exhausted after %d tries: %w", attempt, err)
			}

			if err := w.wait(ctx, w.policy.Backoff(attempt)); err != nil {
				w.setStatus(ctx, feed.StatusDisconnected)
				return err
			}

			continue
		}

		attempt = 0
		w.setStatus(ctx, feed.StatusConnected)
		metricFeedConnected.Set(1)
		logger(ctx).Info("feed connected", "url", w.url)

		readErr := w.readLoop(ctx, conn)
		w.dropConn()
		metricFeedConnected.Set(0)

		if ctx.Err() != nil {
			w.setStatus(ctx, feed.StatusDisconnected)
			return ctx.Err()
		}

		if feed.IsCloseError(readErr) {
			w.setStatus(ctx, feed.StatusDisconnected)
			logger(ctx).Info("feed closed", logx.Error(readErr))
		} else {
			w.setStatus(ctx, feed.StatusFailed)
			w.alert(feed.StatusFailed, 0, readErr)
			logger(ctx).Error("feed read failed", logx.Error(readErr))
		}

		if err := w.wait(ctx, w.policy.Backoff(1)); err != nil {
			w.setStatus(ctx, feed.StatusDisconnected)
			return err
		}
	}
}

// connect dials the feed. A second connect attempt while a connection handle
// is still held is suppressed.
func (w *Ingestor) connect(ctx context.Context) (feed.Conn, error) {
	w.mu.Lock()
	if w.conn != nil {
		conn := w.conn
		w.mu.Unlock()
		return conn, nil
	}
	w.status = feed.StatusConnecting
	w.mu.Unlock()

	conn, err := w.dialer.DialContext(ctx, w.url)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	return conn, nil
}

// readLoop consumes frames until the connection breaks. Message handling
// never kills the connection; only transport errors do.
func (w *Ingestor) readLoop(ctx context.Context, conn feed.Conn) error {
	stop := make(chan struct{})
	defer close(stop)

	// Unblock the pending read when the run context ends.
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		w.handleMessage(ctx, payload)
	}
}

func (w *Ingestor) handleMessage(ctx context.Context, payload []byte) {
	metricFeedEvents.Inc()

	envelope, err := feed.ParseEnvelope(payload)
	if err != nil {
		metricParseFailures.Inc()
		logger(ctx).Error("malformed feed payload", logx.Error(err))
		return
	}

	if envelope.Event != feed.EventGift {
		return
	}

	data, err := envelope.GiftData()
	if err != nil {
		metricParseFailures.Inc()
		logger(ctx).Error("malformed gift data", logx.Error(err))
		return
	}

	if err := data.Validate(); err != nil {
		metricParseFailures.Inc()
		logger(ctx).Error("gift event rejected", logx.Error(err))
		return
	}

	if !data.Qualifies() {
		return
	}

	record := data.Record()

	// Create failures drop the event; there is no retry.
	if err := w.service.RecordGift(ctx, &record); err != nil {
		metricPersistFailures.Inc()
		logger(ctx).Error("failed to persist gift", "sender", record.Sender, "gift", record.GiftName, logx.Error(err))
		return
	}

	metricRecordsCreated.Inc()
	logger(ctx).Info("gift recorded",
		"sender", record.Sender,
		"gift", record.GiftName,
		"count", record.Count,
	)
}

func (w *Ingestor) wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Ingestor) setStatus(ctx context.Context, status feed.Status) {
	w.mu.Lock()
	changed := w.status != status
	w.status = status
	w.mu.Unlock()

	if changed {
		logger(ctx).Debug("feed status", "status", status.String())
	}
}

func (w *Ingestor) dropConn() {
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	w.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (w *Ingestor) alert(status feed.Status, attempt int, err error) {
	if w.alerts == nil {
		return
	}

	select {
	case w.alerts <- Alert{Status: status, Attempt: attempt, Err: err}:
	default:
		// Alerts are advisory; never block ingestion on a slow notifier.
	}
}
