package middleware

import (
	"fmt"
	"strconv"
	"time"

	"payment-service/src/pkg/log"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const slowRequestThreshold = time.Second

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency, by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// NewLogger logs every request and records its latency.
func NewLogger() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()
		elapsed := time.Since(start)

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := ctx.Route().Path
		method := ctx.Method()

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())

		meta := fmt.Sprintf("status=%d latency=%s ip=%s", status, elapsed, ctx.IP())
		logger := log.GetLogger()
		switch {
		case elapsed > slowRequestThreshold:
			logger.Slow("http", fmt.Sprintf("%s %s", method, ctx.OriginalURL()), "request", meta)
		case status >= fiber.StatusInternalServerError:
			logger.Error("http", fmt.Sprintf("%s %s", method, ctx.OriginalURL()), "request", meta)
		default:
			logger.Info("http", fmt.Sprintf("%s %s", method, ctx.OriginalURL()), "request", meta)
		}
		return err
	}
}
