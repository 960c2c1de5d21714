package actor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultMetricsNamespace = "actor"

type systemMetrics struct {
	liveActors        prometheus.Gauge   // Actors currently registered.
	spawnedTotal      prometheus.Counter // Successful ActorOf calls.
	instantiateFailed prometheus.Counter // Failed ActorOf calls.
	stoppedTotal      prometheus.Counter // Actors drained and removed.
	acceptedTotal     prometheus.Counter // Messages queued into a mailbox.
	rejectedTotal     prometheus.Counter // Messages refused by a draining/stopped actor.
	processedTotal    prometheus.Counter // Messages handed to Receive.
	notFoundTotal     prometheus.Counter // Sends to unknown refs.
}

func newSystemMetrics(reg prometheus.Registerer, namespace, systemName string) *systemMetrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"system": systemName}
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}
	return &systemMetrics{
		liveActors: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "live_actors",
			Help:        "The number of actors currently registered in the system",
			ConstLabels: labels,
		}),
		spawnedTotal:      counter("spawned_total", "The total number of actors successfully created"),
		instantiateFailed: counter("instantiation_failures_total", "The total number of actors that could not be created"),
		stoppedTotal:      counter("stopped_total", "The total number of actors drained and removed"),
		acceptedTotal:     counter("messages_accepted_total", "The total number of messages accepted into a mailbox"),
		rejectedTotal:     counter("messages_rejected_total", "The total number of messages rejected by draining or stopped actors"),
		processedTotal:    counter("messages_processed_total", "The total number of messages processed by actors"),
		notFoundTotal:     counter("send_not_found_total", "The total number of sends addressed to unknown refs"),
	}
}
