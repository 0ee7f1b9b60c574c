package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobmate",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"service", "method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobmate",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "path", "status"})

	// LiveConnections tracks currently open interview streams.
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "jobmate",
		Name:      "interview_live_connections",
		Help:      "Number of open interview stream connections",
	})

	// QuestionsAsked counts questions emitted across all sessions.
	QuestionsAsked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jobmate",
		Name:      "interview_questions_asked_total",
		Help:      "Total interview questions emitted",
	})

	// AnswersScored counts persisted responses.
	AnswersScored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jobmate",
		Name:      "interview_answers_scored_total",
		Help:      "Total interview answers scored",
	})

	// SessionsCompleted counts sessions reaching a terminal status through
	// the orchestrator, labeled by how they ended.
	SessionsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobmate",
		Name:      "interview_sessions_completed_total",
		Help:      "Total interview sessions finalized",
	}, []string{"reason"})

	// HeartbeatDrops counts connections reaped by the heartbeat loop.
	HeartbeatDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "jobmate",
		Name:      "interview_heartbeat_drops_total",
		Help:      "Connections closed after a missed heartbeat",
	})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is required for the WebSocket upgrade to pass through this
// middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"service": service,
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  strconv.Itoa(rec.status),
			}
			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}
