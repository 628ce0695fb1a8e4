package promutil

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routine to get a Factory:
// 1. The process keeps one non-default prometheus registry singleton.
// 2. Each instrumented queue obtains a Factory via With(queueName).
// 3. The Factory produces native prometheus objects that are already
//    registered and carry the queue name as a const label, similar to the
//    usage of promauto.
// 4. Dropping a queue unregisters all of its collectors in one call.

const (
	// systemOwner groups the process-level collectors that belong to no
	// particular queue.
	systemOwner = "system"

	// metricPrefix namespaces every metric produced here so that an
	// embedding application cannot collide with it.
	metricPrefix = "conqueue"
)

const (
	// constLabelQueueKey tags every metric with the queue it belongs to,
	// so several queues can coexist in one scrape.
	constLabelQueueKey = "queue"
)

// HandlerOpts is the option type consumed by HttpHandlerForMetric.
type HandlerOpts = promhttp.HandlerOpts

// HttpHandlerForMetric return http.Handler for prometheus metric
func HttpHandlerForMetric() http.Handler {
	return promhttp.HandlerFor(
		globalMetricGatherer,
		HandlerOpts{},
	)
}

// With returns a Factory whose metrics all carry queueName as a const
// label and are tracked under that name for later unregistration.
func With(queueName string) Factory {
	return &wrappingFactory{
		r:      globalMetricRegistry,
		owner:  queueName,
		prefix: metricPrefix,
		constLabels: prometheus.Labels{
			constLabelQueueKey: queueName,
		},
	}
}

// Unregister drops every collector that was registered under queueName.
func Unregister(queueName string) {
	globalMetricRegistry.Unregister(queueName)
}
