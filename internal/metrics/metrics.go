// Package metrics exposes Prometheus collectors for the analysis worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Workflow metrics
	WorkflowsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_workflows_completed_total",
			Help: "Total number of workflows that reached a terminal outcome",
		},
		[]string{"outcome"},
	)

	WorkflowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analyzer_workflow_duration_seconds",
			Help:    "Workflow execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RoutingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_routing_decisions_total",
			Help: "Routing decisions by how they were reached",
		},
		[]string{"method"},
	)

	// Unit metrics
	UnitResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_unit_results_total",
			Help: "Analysis unit outcomes",
		},
		[]string{"domain", "status", "processing_method"},
	)

	UnitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyzer_unit_duration_seconds",
			Help:    "Analysis unit duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	Escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_escalations_total",
			Help: "Escalation policy decisions",
		},
		[]string{"domain", "decision"},
	)

	EnhancementCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_enhancement_calls_total",
			Help: "Enhancement gateway outcomes",
		},
		[]string{"domain", "outcome"},
	)

	// Collaborator metrics
	CollaboratorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_collaborator_errors_total",
			Help: "Failed calls to external collaborators",
		},
		[]string{"collaborator"},
	)

	// Worker metrics
	WorkerMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_worker_messages_total",
			Help: "Stream messages handled by the worker",
		},
		[]string{"outcome"},
	)

	// Health metrics
	HealthCheckResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_health_checks_total",
			Help: "Health check outcomes per checked dependency",
		},
		[]string{"check", "outcome"},
	)

	HealthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyzer_health_check_duration_seconds",
			Help:    "Time spent checking each dependency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"check"},
	)
)
