// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradesim_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	TradesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradesim_trades_executed_total",
		Help: "Committed trades by order type",
	}, []string{"order_type"})

	TradesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradesim_trades_rejected_total",
		Help: "Rejected trades by error code",
	}, []string{"code"})

	DepositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradesim_deposits_total",
		Help: "Accepted manual deposits",
	})

	DailyBonusClaims = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradesim_daily_bonus_claims_total",
		Help: "Successful daily bonus claims",
	})

	MarketTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradesim_market_ticks_total",
		Help: "Completed price simulation ticks",
	})
)

// HTTPMiddleware records per-route request latency
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
