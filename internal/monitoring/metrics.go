package monitoring

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"luxe-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	reservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxe_reservations_total",
			Help: "Reservation submissions by kind and result",
		},
		[]string{"kind", "result"},
	)

	submissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "luxe_reservation_submit_duration_seconds",
			Help:    "Time spent accepting a reservation submission",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	persistTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxe_reservation_persist_total",
			Help: "Queued reservations written to the database by result",
		},
		[]string{"result"},
	)

	inventoryOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxe_inventory_operations_total",
			Help: "Capacity counter operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	streamLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "luxe_reservation_stream_length",
			Help: "Current length of the reservation stream",
		},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "luxe_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "luxe_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// RecordReservation result 例如 accepted、sold_out、invalid、error
func RecordReservation(kind, result string) {
	reservationsTotal.WithLabelValues(kind, result).Inc()
}

func ObserveSubmission(kind string, d time.Duration) {
	submissionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func RecordPersist(result string) {
	persistTotal.WithLabelValues(result).Inc()
}

func RecordInventory(operation, result string) {
	inventoryOperations.WithLabelValues(operation, result).Inc()
}

// Handler /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware 以路由樣板作為 label，避免 path 參數造成高基數
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(route, c.Request.Method, status).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// StreamMonitor 定期讀取 reservation stream 長度
type StreamMonitor struct {
	redis     *redis.Client
	streamKey string
	interval  time.Duration
	log       *zap.Logger
}

func NewStreamMonitor(client *redis.Client, streamKey string, interval time.Duration) *StreamMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StreamMonitor{
		redis:     client,
		streamKey: streamKey,
		interval:  interval,
		log:       logger.WithComponent("monitoring"),
	}
}

// Run 阻塞直到 ctx 結束
func (m *StreamMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Collect(ctx)
		}
	}
}

func (m *StreamMonitor) Collect(ctx context.Context) {
	length, err := m.redis.XLen(ctx, m.streamKey).Result()
	if err != nil {
		m.log.Warn("read stream length failed", zap.String("stream", m.streamKey), zap.Error(err))
		return
	}
	streamLength.Set(float64(length))
}
