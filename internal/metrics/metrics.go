// Package metrics provides Prometheus metrics for the article service.
package metrics

import (
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"article_cms/internal/domain"
)

const namespace = "article_cms"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	ArticleMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "mutations_total",
			Help:      "Article create/update/delete calls by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	ArticleEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "events_published_total",
			Help:      "Article change events handed to the broker by result",
		},
		[]string{"action", "result"},
	)

	ArticlesByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "by_status",
			Help:      "Number of articles per status at the last audit",
		},
		[]string{"status"},
	)

	OrphanArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "orphans",
			Help:      "Articles whose parent no longer exists at the last audit",
		},
	)

	PastDueArticles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "past_due",
			Help:      "Articles not yet active after the review window at the last audit",
		},
	)

	ListSnapshotSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "articles",
			Name:      "snapshot_size",
			Help:      "Number of articles in the snapshot each query is computed from",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)

// Outcome classifies an error for the mutation counter.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "error"
	}
}

// ObserveMutation counts one lifecycle call.
func ObserveMutation(action domain.EventAction, err error) {
	ArticleMutationsTotal.WithLabelValues(string(action), Outcome(err)).Inc()
}

// ObservePublish counts one broker hand-off.
func ObservePublish(action domain.EventAction, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ArticleEventsPublished.WithLabelValues(string(action), result).Inc()
}

// ObserveAudit publishes the gauges of one hierarchy audit.
func ObserveAudit(report *domain.AuditReport) {
	for status, n := range report.ByStatus {
		ArticlesByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
	OrphanArticles.Set(float64(len(report.OrphanIDs)))
	PastDueArticles.Set(float64(report.PastDue))
}

// RegisterDBStats exposes database/sql pool statistics.
func RegisterDBStats(db *sql.DB, name string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, name))
}
