// Package metrics provides Prometheus metrics for the pitch game service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	scoreBuckets     []float64
	registry         prometheus.Registerer

	// Game lifecycle
	gamesCreated prometheus.Counter
	gamesActive  prometheus.Gauge

	// Pitch lifecycle and outcomes
	pitchesStarted prometheus.Counter
	pitchesEnded   *prometheus.CounterVec
	pitchScore     prometheus.Histogram
	comboLevel     prometheus.Histogram
	achievements   *prometheus.CounterVec
	powerUps       *prometheus.CounterVec

	// Attention simulator
	attentionTicks    prometheus.Counter
	attentionWarnings prometheus.Counter

	// Scoring engine
	scoringLatency prometheus.Histogram
	scoringErrors  *prometheus.CounterVec

	// Command queue
	commandsRejected *prometheus.CounterVec
	commandLatency   prometheus.Histogram

	// Leaderboard
	leaderboardUpdates prometheus.Counter
	leaderboardSize    prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitch",
		subsystem:        "game",
		histogramBuckets: prometheus.DefBuckets,
		scoreBuckets:     []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 9.5, 10},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)

	m.gamesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_created_total",
		Help:      "Total number of game sessions created",
	})

	m.gamesActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_active",
		Help:      "Number of game sessions currently registered",
	})

	m.pitchesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pitches_started_total",
		Help:      "Total number of pitches started",
	})

	m.pitchesEnded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pitches_ended_total",
		Help:      "Total number of pitches ended, by outcome",
	}, []string{"outcome"})

	m.pitchScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pitch_score",
		Help:      "Distribution of composed pitch scores (0-10)",
		Buckets:   m.scoreBuckets,
	})

	m.comboLevel = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combo_level",
		Help:      "Distribution of combo levels reached per scored pitch",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})

	m.achievements = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "achievements_total",
		Help:      "Total number of achievements unlocked, by achievement",
	}, []string{"achievement"})

	m.powerUps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "power_ups_total",
		Help:      "Total number of power-ups activated, by kind",
	}, []string{"kind"})

	m.attentionTicks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attention_ticks_total",
		Help:      "Total number of attention simulator ticks applied",
	})

	m.attentionWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attention_warnings_total",
		Help:      "Total number of high attention-loss warnings fired",
	})

	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_milliseconds",
		Help:      "Histogram of pitch scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.scoringErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of rejected scoring attempts, by reason",
	}, []string{"reason"})

	m.commandsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commands_rejected_total",
		Help:      "Total number of game commands rejected by the session queue, by reason",
	}, []string{"reason"})

	m.commandLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_latency_milliseconds",
		Help:      "Time from enqueue to completion of a game command",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.leaderboardUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_updates_total",
		Help:      "Total number of improved personal bests",
	})

	m.leaderboardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "leaderboard_players",
		Help:      "Number of players on the leaderboard",
	})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of HTTP errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordGameCreated increments the games created counter.
func RecordGameCreated() {
	globalManager.gamesCreated.Inc()
}

// UpdateGamesActive sets the number of registered games.
func UpdateGamesActive(count int) {
	globalManager.gamesActive.Set(float64(count))
}

// RecordPitchStarted increments the pitches started counter.
func RecordPitchStarted() {
	globalManager.pitchesStarted.Inc()
}

// RecordPitchEnded increments the pitches ended counter for an outcome.
func RecordPitchEnded(outcome string) {
	globalManager.pitchesEnded.WithLabelValues(outcome).Inc()
}

// RecordPitchScore observes a composed pitch score.
func RecordPitchScore(score float64) {
	globalManager.pitchScore.Observe(score)
}

// RecordComboLevel observes the combo level reached by a pitch.
func RecordComboLevel(level int) {
	globalManager.comboLevel.Observe(float64(level))
}

// RecordAchievement increments the counter for an unlocked achievement.
func RecordAchievement(id string) {
	globalManager.achievements.WithLabelValues(id).Inc()
}

// RecordPowerUp increments the counter for an activated power-up kind.
func RecordPowerUp(kind string) {
	globalManager.powerUps.WithLabelValues(kind).Inc()
}

// RecordAttentionTick increments the attention ticks counter.
func RecordAttentionTick() {
	globalManager.attentionTicks.Inc()
}

// RecordAttentionWarning increments the attention warnings counter.
func RecordAttentionWarning() {
	globalManager.attentionWarnings.Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordScoringError increments the scoring errors counter for a reason.
func RecordScoringError(reason string) {
	globalManager.scoringErrors.WithLabelValues(reason).Inc()
}

// RecordCommandRejected increments the rejected commands counter for a reason.
func RecordCommandRejected(reason string) {
	globalManager.commandsRejected.WithLabelValues(reason).Inc()
}

// RecordCommandLatency records command round-trip latency in milliseconds.
func RecordCommandLatency(latencyMs float64) {
	globalManager.commandLatency.Observe(latencyMs)
}

// RecordLeaderboardUpdate increments the improved personal bests counter.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// UpdateLeaderboardSize sets the number of players on the leaderboard.
func UpdateLeaderboardSize(count int) {
	globalManager.leaderboardSize.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
