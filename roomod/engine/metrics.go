package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var evaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "roomod_evaluation_duration_sec",
	Help: "Total duration of submission evaluation, including dispatch",
})

var evaluationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roomod_evaluations",
	Help: "Number of submissions evaluated, by decided action",
}, []string{"action"})

var evaluationErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roomod_evaluation_errors",
	Help: "Number of evaluations which failed",
}, []string{"stage"})

var issueCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roomod_issues",
	Help: "Number of issues seen, by kind",
}, []string{"kind"})

var dispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "roomod_dispatch_failures",
	Help: "Number of failed dispatch steps",
}, []string{"step"})

var actionRemovalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roomod_new_action_removals",
	Help: "Number of submissions removed",
})

var actionEscalationCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roomod_new_action_escalations",
	Help: "Number of submissions escalated to the moderation team",
})

var circuitBreakCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "roomod_removal_circuit_breaks",
	Help: "Number of evaluations refused because the daily removal quota was reached",
})
