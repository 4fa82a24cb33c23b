package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	genealogyWriteConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genealogy",
		Subsystem: "write",
		Name:      "conflicts_total",
		Help:      "Total number of genealogy write conflicts broken down by kind.",
	}, []string{"kind"})

	generationRecalcs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "genealogy",
		Subsystem: "generation",
		Name:      "recalculations_total",
		Help:      "Total number of whole-branch generation recalculations.",
	})

	generationCycleAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "genealogy",
		Subsystem: "generation",
		Name:      "cycle_anomalies_total",
		Help:      "Total number of persons whose generation was forced to 1 by the parent-cycle guard.",
	})

	bridgeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "genealogy",
		Subsystem: "bridge",
		Name:      "transitions_total",
		Help:      "Total number of bridge-link state transitions broken down by action.",
	}, []string{"action"})
)

func recordWriteConflict(kind string) {
	if kind == "" {
		kind = "other"
	}
	genealogyWriteConflicts.WithLabelValues(kind).Inc()
}

func recordBridgeTransition(action string) {
	bridgeTransitions.WithLabelValues(action).Inc()
}
