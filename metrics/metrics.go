// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface the services use. A Nop implementation
// exists for tests.
type Recorder interface {
	RecordSwipe(decision string)
	RecordMatchCreated()
	RecordMessageSent()
	RecordFeedRequest()
	RecordPoll()
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	swipes         *prometheus.CounterVec
	matchesCreated prometheus.Counter
	messagesSent   prometheus.Counter
	feedRequests   prometheus.Counter
	polls          prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "squadfinder_swipes_total",
			Help: "Total swipe decisions recorded, by decision.",
		}, []string{"decision"}),
		matchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squadfinder_matches_created_total",
			Help: "Total matches created.",
		}),
		messagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squadfinder_messages_sent_total",
			Help: "Total chat messages appended.",
		}),
		feedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squadfinder_feed_requests_total",
			Help: "Total feed computations served.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "squadfinder_chat_polls_total",
			Help: "Total chat poll requests served.",
		}),
	}

	reg.MustRegister(
		c.swipes,
		c.matchesCreated,
		c.messagesSent,
		c.feedRequests,
		c.polls,
	)

	return c
}

func (c *Collector) RecordSwipe(decision string) { c.swipes.WithLabelValues(decision).Inc() }
func (c *Collector) RecordMatchCreated()         { c.matchesCreated.Inc() }
func (c *Collector) RecordMessageSent()          { c.messagesSent.Inc() }
func (c *Collector) RecordFeedRequest()          { c.feedRequests.Inc() }
func (c *Collector) RecordPoll()                 { c.polls.Inc() }

// Nop discards all recordings.
type Nop struct{}

func (Nop) RecordSwipe(string)  {}
func (Nop) RecordMatchCreated() {}
func (Nop) RecordMessageSent()  {}
func (Nop) RecordFeedRequest()  {}
func (Nop) RecordPoll()         {}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
