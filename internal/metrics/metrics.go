// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for a sync run:
// - Upstream API requests, retries and quota
// - Report partitioning and escalation
// - Per-stream record throughput
// - Circuit breaker and token refresh state
// - Record sink publishing

var (
	// Upstream API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_api_requests_total",
			Help: "Total number of QuickBooks API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledgerline_api_request_duration_seconds",
			Help:    "QuickBooks API request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}, // report requests are slow
		},
		[]string{"endpoint"},
	)

	APIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_api_retries_total",
			Help: "Total number of retried API requests",
		},
		[]string{"endpoint", "reason"}, // reason: "rate_limit", "server_error", "network", "auth", "invalid_body"
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_api_rate_limit_hits_total",
			Help: "Total number of HTTP 429 responses",
		},
		[]string{"endpoint"},
	)

	// Quota Metrics
	QuotaUsedPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledgerline_quota_used_percent",
			Help: "Account-wide API quota usage last reported by the server",
		},
	)

	QuotaRequestsThisRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledgerline_quota_requests_this_run",
			Help: "Quota-metered requests made by this run",
		},
	)

	QuotaAborts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_quota_aborts_total",
			Help: "Runs terminated by a quota ceiling",
		},
		[]string{"limit"}, // limit: "total", "per_run"
	)

	// Partition Metrics
	PartitionWindowsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_partition_windows_fetched_total",
			Help: "Report windows fetched successfully",
		},
		[]string{"report", "granularity"},
	)

	PartitionEscalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_partition_escalations_total",
			Help: "Granularity escalations after a data volume ceiling",
		},
		[]string{"report", "from", "to"},
	)

	// Stream Metrics
	StreamRecordsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_stream_records_emitted_total",
			Help: "Records written per stream",
		},
		[]string{"stream"},
	)

	StreamSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledgerline_stream_sync_duration_seconds",
			Help:    "Duration of one stream sync in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}, // general ledger syncs can take many minutes
		},
		[]string{"stream"},
	)

	StreamSyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_stream_sync_errors_total",
			Help: "Stream syncs that ended in an error",
		},
		[]string{"stream"},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledgerline_sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last stream sync that completed",
		},
	)

	// Token Metrics
	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_token_refreshes_total",
			Help: "OAuth2 access token refreshes",
		},
		[]string{"result"}, // result: "success", "failure"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Sink Metrics
	SinkMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_sink_messages_published_total",
			Help: "Messages handed to a sink",
		},
		[]string{"sink", "type"}, // type: "SCHEMA", "RECORD", "STATE", "ACTIVATE_VERSION"
	)

	SinkPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerline_sink_publish_errors_total",
			Help: "Messages a sink failed to publish",
		},
		[]string{"sink"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records one upstream request and its latency
func RecordAPIRequest(endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordAPIRetry records a retried request
func RecordAPIRetry(endpoint, reason string) {
	APIRetries.WithLabelValues(endpoint, reason).Inc()
	if reason == "rate_limit" {
		APIRateLimitHits.WithLabelValues(endpoint).Inc()
	}
}

// RecordQuota updates the quota gauges from a usage header observation.
func RecordQuota(used, allotted, attempted int) {
	if allotted > 0 {
		QuotaUsedPercent.Set(float64(used) / float64(allotted) * 100)
	}
	QuotaRequestsThisRun.Set(float64(attempted))
}

// RecordQuotaAbort records a run stopped by the total or per-run ceiling
func RecordQuotaAbort(limit string) {
	QuotaAborts.WithLabelValues(limit).Inc()
}

// RecordWindowFetched records a successfully fetched report window
func RecordWindowFetched(report, granularity string) {
	PartitionWindowsFetched.WithLabelValues(report, granularity).Inc()
}

// RecordPartitionEscalation records a move to a finer granularity
func RecordPartitionEscalation(report, from, to string) {
	PartitionEscalations.WithLabelValues(report, from, to).Inc()
}

// RecordStreamSync records the outcome of one stream sync
func RecordStreamSync(stream string, records int, duration time.Duration, err error) {
	StreamSyncDuration.WithLabelValues(stream).Observe(duration.Seconds())
	StreamRecordsEmitted.WithLabelValues(stream).Add(float64(records))
	if err != nil {
		StreamSyncErrors.WithLabelValues(stream).Inc()
		return
	}
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordTokenRefresh records an access token refresh attempt
func RecordTokenRefresh(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	TokenRefreshes.WithLabelValues(result).Inc()
}

// RecordSinkPublish records one message handed to a sink
func RecordSinkPublish(sink, msgType string, err error) {
	if err != nil {
		SinkPublishErrors.WithLabelValues(sink).Inc()
		return
	}
	SinkMessagesPublished.WithLabelValues(sink, msgType).Inc()
}

// SetAppInfo publishes the build version
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
