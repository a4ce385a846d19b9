package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry. Every method is safe on a
// nil receiver so callers need no "metrics enabled" branches.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	ordersPlaced    *Counter
	ordersCancelled *Counter
	orderFailures   *CounterVec
	orderValue      *HistogramVec
	ordersByStatus  *GaugeVec

	cacheLookups *CounterVec
	redisUp      *Gauge
	redisPing    *Gauge
	dbPool       *GaugeVec

	scrapeInterval time.Duration
}

func NewMetrics(scrapeInterval time.Duration) *Metrics {
	if scrapeInterval <= 0 {
		scrapeInterval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("storefront_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"storefront_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("storefront_api_inflight_requests", "In-flight API requests."),

		ordersPlaced:    NewCounter("storefront_orders_placed_total", "Orders created."),
		ordersCancelled: NewCounter("storefront_orders_cancelled_total", "Orders cancelled and restocked."),
		orderFailures:   NewCounterVec("storefront_order_failures_total", "Rejected order operations by operation/code.", []string{"op", "code"}),
		orderValue: NewHistogramVec(
			"storefront_order_value",
			"Order total amount.",
			nil,
			[]float64{5, 10, 25, 50, 100, 250, 500, 1000},
		),
		ordersByStatus: NewGaugeVec("storefront_orders_by_status", "Orders currently in each status.", []string{"status"}),

		cacheLookups: NewCounterVec("storefront_catalog_cache_lookups_total", "Catalog cache lookups by kind/result.", []string{"kind", "result"}),
		redisUp:      NewGauge("storefront_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing:    NewGauge("storefront_redis_ping_seconds", "Last redis ping latency."),
		dbPool:       NewGaugeVec("storefront_db_pool", "database/sql pool stats.", []string{"stat"}),

		scrapeInterval: scrapeInterval,
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveOrderPlaced(total float64) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderValue.Observe(total)
}

func (m *Metrics) IncOrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *Metrics) IncOrderFailure(op, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "internal_error"
	}
	m.orderFailures.Inc(op, code)
}

func (m *Metrics) IncCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Inc(kind, result)
}

func (m *Metrics) OrdersPlaced() float64 {
	if m == nil {
		return 0
	}
	return m.ordersPlaced.Value()
}

// StartServer exposes /metrics on its own listener until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.ordersPlaced, m.ordersCancelled, m.orderFailures, m.orderValue, m.ordersByStatus,
		m.cacheLookups, m.redisUp, m.redisPing, m.dbPool,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

// StartOrderStatusCollector samples order counts per status.
func (m *Metrics) StartOrderStatusCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	m.every(ctx, func() {
		for _, s := range []types.OrderStatus{
			types.OrderStatusPending, types.OrderStatusProcessing, types.OrderStatusShipped,
			types.OrderStatusDelivered, types.OrderStatusCancelled,
		} {
			m.ordersByStatus.Set(0, string(s))
		}
		var rows []struct {
			Status string
			Count  int64
		}
		if err := db.WithContext(ctx).
			Model(&types.Order{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&rows).Error; err != nil {
			if log != nil {
				log.Warn("metrics: order status query failed", "error", err)
			}
			return
		}
		for _, row := range rows {
			m.ordersByStatus.Set(float64(row.Count), row.Status)
		}
	})
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	m.every(ctx, func() {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			if log != nil {
				log.Warn("metrics: redis ping failed", "error", err)
			}
			return
		}
		m.redisUp.Set(1)
		m.redisPing.Set(time.Since(start).Seconds())
	})
}

func (m *Metrics) StartDBPoolCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db pool unavailable", "error", err)
		}
		return
	}
	m.every(ctx, func() {
		st := sqlDB.Stats()
		m.dbPool.Set(float64(st.OpenConnections), "open")
		m.dbPool.Set(float64(st.InUse), "in_use")
		m.dbPool.Set(float64(st.Idle), "idle")
		m.dbPool.Set(float64(st.WaitCount), "wait_count")
	})
}

func (m *Metrics) every(ctx context.Context, fn func()) {
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}
