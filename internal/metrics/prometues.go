package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ViewsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "video_views_recorded_total",
			Help: "Total number of view signals committed",
		},
	)

	WatchEventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_watch_events_recorded_total",
			Help: "Total number of watch events committed",
		},
		[]string{"completed"},
	)

	WatchSecondsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "video_watch_seconds_recorded_total",
			Help: "Sum of watch durations committed, in seconds",
		},
	)

	IngestRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_ingest_rejected_total",
			Help: "Analytics reports rejected before reaching the store",
		},
		[]string{"source", "reason"},
	)

	VideosUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "videos_uploaded_total",
			Help: "Total number of videos uploaded",
		},
	)

	ResponseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database statement duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	QueueSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analytics_event_queue_size",
			Help: "Current size of the analytics event publish queue",
		},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_events_published_total",
			Help: "Analytics events handed to the broker, by outcome",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(ViewsRecorded)
	prometheus.MustRegister(WatchEventsRecorded)
	prometheus.MustRegister(WatchSecondsRecorded)
	prometheus.MustRegister(IngestRejected)
	prometheus.MustRegister(VideosUploaded)
	prometheus.MustRegister(ResponseTime)
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(QueueSize)
	prometheus.MustRegister(EventsPublished)
}
