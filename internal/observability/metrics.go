// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Modhost Contributors

package observability

import "github.com/prometheus/client_golang/prometheus"

// Package-level dispatch metrics. The callback engine increments these
// without needing a Server instance; a Server exposes them when it is
// registered and started.
var (
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modhost_callback_executions_total",
			Help: "Total number of completed callback execution passes",
		},
		[]string{"callback"},
	)

	listenerFaultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modhost_listener_faults_total",
			Help: "Total number of listener invocations that faulted",
		},
		[]string{"callback"},
	)

	rejectedHandlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modhost_rejected_handles_total",
			Help: "Total number of listener handles rejected or skipped by reason",
		},
		[]string{"callback", "reason"},
	)

	unsafeContextTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modhost_unsafe_context_total",
			Help: "Total number of execution passes aborted by an unsafe context",
		},
		[]string{"callback"},
	)

	managedCallbacks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "modhost_managed_callbacks",
			Help: "Number of callbacks currently owned by the registry",
		},
	)
)

// RecordExecute counts one completed execution pass for the named callback.
func RecordExecute(callback string) {
	executionsTotal.WithLabelValues(callback).Inc()
}

// RecordListenerFault counts one faulted listener invocation.
func RecordListenerFault(callback string) {
	listenerFaultsTotal.WithLabelValues(callback).Inc()
}

// RecordRejectedHandle counts one rejected or skipped handle.
// reason is "nil" or "implausible".
func RecordRejectedHandle(callback, reason string) {
	rejectedHandlesTotal.WithLabelValues(callback, reason).Inc()
}

// RecordUnsafeContext counts one execution pass aborted before any listener
// ran because the context probe faulted.
func RecordUnsafeContext(callback string) {
	unsafeContextTotal.WithLabelValues(callback).Inc()
}

// SetManagedCallbacks records the current size of the registry's owned set.
func SetManagedCallbacks(n int) {
	managedCallbacks.Set(float64(n))
}

func registerDispatchMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		executionsTotal,
		listenerFaultsTotal,
		rejectedHandlesTotal,
		unsafeContextTotal,
		managedCallbacks,
	)
}
