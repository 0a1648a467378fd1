package monitoring

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketsListed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_listed_total",
			Help: "Total tickets listed for sale",
		},
	)

	ticketsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Total tickets settled as sold",
		},
	)

	signatureMismatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_signature_mismatch_total",
			Help: "Payment callbacks rejected for a bad signature",
		},
	)

	otpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "otp_requests_total",
			Help: "One-time code requests by purpose",
		},
		[]string{"purpose"},
	)

	gatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Payment gateway calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func TrackTicketListed()      { ticketsListed.Inc() }
func TrackTicketSold()        { ticketsSold.Inc() }
func TrackSignatureMismatch() { signatureMismatches.Inc() }

func TrackOTPRequest(purpose string) {
	otpRequests.WithLabelValues(purpose).Inc()
}

func TrackGatewayRequest(operation, status string) {
	gatewayRequests.WithLabelValues(operation, status).Inc()
}

// HTTPMetrics records request latency per route.
func HTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			httpDuration.WithLabelValues(
				c.Request().Method,
				c.Request().URL.Path,
				strconv.Itoa(c.Response().Status),
			).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Serve exposes the Prometheus endpoint on its own port.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Metrics server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}
