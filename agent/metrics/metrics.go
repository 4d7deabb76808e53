package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agentic_bank"

var (
	// turnsTotal counts finished turns.
	// Labels: intent, outcome (clarification, completed, cancelled, degraded)
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orchestrator",
		Name:      "turns_total",
		Help:      "Total processed turns by resolved intent and outcome",
	}, []string{"intent", "outcome"})

	turnLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "orchestrator",
		Name:      "turn_latency_seconds",
		Help:      "Turn processing latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"outcome"})

	degradationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orchestrator",
		Name:      "degradations_total",
		Help:      "Total turns answered through the degradation path",
	}, []string{"reason"})

	phaseTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "phase_transitions_total",
		Help:      "Total session phase transitions",
	}, []string{"from", "to"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions currently held in memory",
	})

	// reviewScore tracks normalised review scores.
	// Labels: kind (plan, execution)
	reviewScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "reviewer",
		Name:      "score",
		Help:      "Distribution of normalised review scores",
		Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}, []string{"kind"})

	auditDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "dropped_total",
		Help:      "Total audit events dropped because the buffer was full",
	})

	auditFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "failures_total",
		Help:      "Total audit events a sink failed to record",
	}, []string{"sink"})
)

func RecordTurn(intent, outcome string, durationSec float64) {
	if intent == "" {
		intent = "none"
	}
	turnsTotal.WithLabelValues(intent, outcome).Inc()
	turnLatency.WithLabelValues(outcome).Observe(durationSec)
}

func RecordDegradation(reason string) {
	degradationsTotal.WithLabelValues(reason).Inc()
}

func RecordPhaseTransition(from, to string) {
	phaseTransitionsTotal.WithLabelValues(from, to).Inc()
}

func SetActiveSessions(n int) {
	sessionsActive.Set(float64(n))
}

func RecordReviewScore(kind string, score float64) {
	reviewScore.WithLabelValues(kind).Observe(score)
}

func RecordAuditDropped() {
	auditDroppedTotal.Inc()
}

func RecordAuditFailure(sink string) {
	auditFailuresTotal.WithLabelValues(sink).Inc()
}
