package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyroom_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "studyroom_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyroom_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	DocumentsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyroom_documents_uploaded_total",
			Help: "Total PDFs uploaded",
		},
	)

	UploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyroom_upload_bytes_total",
			Help: "Total bytes of uploaded PDFs",
		},
	)

	// WebSocket metrics
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studyroom_ws_clients",
			Help: "Currently connected WebSocket clients",
		},
	)

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyroom_ws_events_received_total",
			Help: "Total events received from clients",
		},
		[]string{"event"},
	)

	SlowClientsClosed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyroom_ws_slow_clients_closed_total",
			Help: "Connections closed because their send buffer was full",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studyroom_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"path"},
	)

	// Infrastructure metrics
	BusPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studyroom_bus_publish_errors_total",
			Help: "Failed broadcast publications",
		},
	)
)
