package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// PrometheusHandler returns a Gin handler for Prometheus metrics
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler != nil {
			handler.ServeHTTP(c.Writer, c.Request)
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "metrics handler not initialized",
			})
		}
	}
}

// HTTPMetrics records request counts and latency per route template
type HTTPMetrics struct {
	requests otelmetric.Int64Counter
	duration otelmetric.Float64Histogram
}

// NewHTTPMetrics registers the request instruments on meter
func NewHTTPMetrics(meter otelmetric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("storyboard.http.requests",
		otelmetric.WithDescription("Number of handled API requests"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("storyboard.http.request.duration",
		otelmetric.WithDescription("API request latency"),
		otelmetric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// Middleware records one observation per request. Unmatched routes share the "unmatched" label.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		attrs := otelmetric.WithAttributes(
			attribute.String("http.route", route),
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
		)

		ctx := c.Request.Context()
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}
