package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_http_requests_total",
			Help: "Total number of HTTP requests processed by the barter gateway.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "barter_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	swipesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_swipes_total",
			Help: "Swipe decisions by direction and record status.",
		},
		[]string{"direction", "status"},
	)
	matchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_match_checks_total",
			Help: "Match detector outcomes.",
		},
		[]string{"outcome"},
	)
	feedFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_feed_fallback_total",
			Help: "Feed requests served by the recency fallback.",
		},
		[]string{"reason"},
	)
	signalDropsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_signal_drops_total",
			Help: "View/search signals that could not be written.",
		},
		[]string{"kind"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "barter_ws_active_connections",
			Help: "Number of active notification websocket connections.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "barter_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		swipesTotal,
		matchesTotal,
		feedFallbackTotal,
		signalDropsTotal,
		wsActiveConnections,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncSwipe(direction, status string) {
	swipesTotal.WithLabelValues(direction, status).Inc()
}

func IncMatchCheck(outcome string) {
	matchesTotal.WithLabelValues(outcome).Inc()
}

func IncFeedFallback(reason string) {
	feedFallbackTotal.WithLabelValues(reason).Inc()
}

func IncSignalDrop(kind string) {
	signalDropsTotal.WithLabelValues(kind).Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
