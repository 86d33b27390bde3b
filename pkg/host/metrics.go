package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// inputsTotal counts host inputs by type
	inputsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanish_inputs_total",
		Help: "Total inputs received from hosts by type",
	}, []string{"type"})

	// tapsTotal counts taps by result: hit, miss or rejected
	tapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanish_taps_total",
		Help: "Total taps by result",
	}, []string{"variant", "result"})

	// stageTransitionsTotal counts successful Next presses
	stageTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanish_stage_transitions_total",
		Help: "Total stage transitions by variant and destination stage",
	}, []string{"variant", "stage"})

	anchorFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vanish_anchor_failures_total",
		Help: "Total anchor creation failures",
	})

	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vanish_responses_total",
		Help: "Total recorded participant answers",
	}, []string{"variant", "answer"})

	// activeSessions tracks dispatchers that have started and not yet closed
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vanish_active_sessions",
		Help: "Number of live experiment sessions",
	})
)
