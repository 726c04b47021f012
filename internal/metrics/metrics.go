package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the processing pipeline.
type Metrics struct {
	CyclesRun      prometheus.Counter
	CyclesSkipped  prometheus.Counter
	ItemsScored    prometheus.Counter
	ItemsForwarded prometheus.Counter
	MatchesCreated prometheus.Counter
	FeedErrors     prometheus.Counter
}

// New registers all pipeline metrics with the given registerer; nil
// uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		CyclesRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedmonitor_cycles_total",
			Help: "Total number of processing cycles started",
		}),
		CyclesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedmonitor_cycles_skipped_total",
			Help: "Triggers skipped because a cycle was already in flight",
		}),
		ItemsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedmonitor_items_scored_total",
			Help: "Total number of feed items scored",
		}),
		ItemsForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedmonitor_items_forwarded_total",
			Help: "Items forwarded to the embedding service",
		}),
		MatchesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedmonitor_matches_created_total",
			Help: "Match relations persisted",
		}),
		FeedErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "feedmonitor_feed_errors_total",
			Help: "Feed fetch or parse failures",
		}),
	}
}

func (m *Metrics) IncCycleRun()     { m.CyclesRun.Inc() }
func (m *Metrics) IncCycleSkipped() { m.CyclesSkipped.Inc() }
func (m *Metrics) IncFeedError()    { m.FeedErrors.Inc() }

func (m *Metrics) AddItemsScored(n int)    { m.ItemsScored.Add(float64(n)) }
func (m *Metrics) AddItemsForwarded(n int) { m.ItemsForwarded.Add(float64(n)) }
func (m *Metrics) AddMatchesCreated(n int) { m.MatchesCreated.Add(float64(n)) }
