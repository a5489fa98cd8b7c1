// Package metrics exposes the service's Prometheus instruments. Every method
// is safe to call on a nil *Metrics so tests and tools can leave it unset.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "onboard"

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultExists   = "exists"
	ResultExpired  = "expired"
	ResultMismatch = "mismatch"
	ResultMissing  = "missing"
	ResultVerified = "already_verified"
	ResultLocked   = "locked"
)

// Password reset stages.
const (
	StageRequest = "request"
	StageVerify  = "verify"
	StageReset   = "reset"
)

type Metrics struct {
	registrations    *prometheus.CounterVec
	otpVerifications *prometheus.CounterVec
	otpDeliveries    *prometheus.CounterVec
	passwordResets   *prometheus.CounterVec
	otpCleared       prometheus.Counter
	requestDuration  *prometheus.HistogramVec
}

// New registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		registrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Owner registrations by result",
		}, []string{"result"}),

		otpVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts by flow and result",
		}, []string{"purpose", "result"}),

		otpDeliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_deliveries_total",
			Help:      "OTP deliveries by purpose and result",
		}, []string{"purpose", "result"}),

		passwordResets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Password reset steps by stage and result",
		}, []string{"stage", "result"}),

		otpCleared: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_expired_cleared_total",
			Help:      "Expired OTPs cleared by housekeeping",
		}),

		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) OTPVerification(purpose, result string) {
	if m == nil {
		return
	}
	m.otpVerifications.WithLabelValues(purpose, result).Inc()
}

func (m *Metrics) OTPDelivery(purpose string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.otpDeliveries.WithLabelValues(purpose, result).Inc()
}

func (m *Metrics) PasswordReset(stage, result string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) OTPCleared(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.otpCleared.Add(float64(n))
}

// Middleware records the duration of every request, labelled by the
// ServeMux pattern that matched it.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
