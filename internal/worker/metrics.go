package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	metricFeedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gift_tracker_feed_events_total",
		Help: "Frames received from the gift-event feed.",
	})

	metricParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gift_tracker_feed_parse_failures_total",
		Help: "Feed frames dropped because the payload did not parse or validate.",
	})

	metricRecordsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gift_tracker_records_created_total",
		Help: "Gift records persisted from qualifying feed events.",
	})

	metricPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gift_tracker_persist_failures_total",
		Help: "Qualifying events dropped because the create failed.",
	})

	metricFeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gift_tracker_feed_connected",
		Help: "1 while the feed connection is established.",
	})
)
