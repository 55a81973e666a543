// Package metrics implements the observability hooks on Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/logicview/pkg/observability"
)

// Collector counts scene, query, replay and HTTP events. It implements
// [observability.SceneHooks], [observability.QueryHooks] and
// [observability.ReplayHooks].
type Collector struct {
	elementsAdded   *prometheus.CounterVec
	elementsRemoved *prometheus.CounterVec
	ties            *prometheus.CounterVec
	unties          prometheus.Counter
	scopeDepth      prometheus.Gauge
	rejections      *prometheus.CounterVec
	queryHits       *prometheus.HistogramVec
	replaySteps     *prometheus.CounterVec
	replayDuration  *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var (
	_ observability.SceneHooks  = (*Collector)(nil)
	_ observability.QueryHooks  = (*Collector)(nil)
	_ observability.ReplayHooks = (*Collector)(nil)
)

// New registers the logicview metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		elementsAdded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logicview_elements_added_total",
			Help: "Elements added to a scope, by kind and whether they replaced an element with the same id",
		}, []string{"kind", "replaced"}),
		elementsRemoved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logicview_elements_removed_total",
			Help: "Elements removed from a scope, by kind",
		}, []string{"kind"}),
		ties: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logicview_connections_tied_total",
			Help: "Connections created, by validity at tie time",
		}, []string{"valid"}),
		unties: f.NewCounter(prometheus.CounterOpts{
			Name: "logicview_connections_untied_total",
			Help: "Connections removed by untie operations",
		}),
		scopeDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "logicview_scope_depth",
			Help: "Nesting depth of the current scope below the global root",
		}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logicview_rejections_total",
			Help: "Rejected scene operations, by operation and error code",
		}, []string{"op", "code"}),
		queryHits: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logicview_query_hits",
			Help:    "Number of results returned by spatial queries",
			Buckets: []float64{0, 1, 2, 5, 10, 50},
		}, []string{"query"}),
		replaySteps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logicview_replay_steps_total",
			Help: "Scenario steps replayed, by op and result",
		}, []string{"op", "result"}),
		replayDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logicview_replay_step_duration_seconds",
			Help:    "Duration of replayed scenario steps",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"op"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "logicview_http_requests_total",
			Help: "Inspection server requests, by route and status code",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logicview_http_request_duration_seconds",
			Help:    "Inspection server request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Install registers c as the global scene, query and replay hooks.
func (c *Collector) Install() {
	observability.SetSceneHooks(c)
	observability.SetQueryHooks(c)
	observability.SetReplayHooks(c)
}

func (c *Collector) OnElementAdded(kind string, replaced bool) {
	c.elementsAdded.WithLabelValues(kind, strconv.FormatBool(replaced)).Inc()
}

func (c *Collector) OnElementRemoved(kind string) {
	c.elementsRemoved.WithLabelValues(kind).Inc()
}

func (c *Collector) OnTie(valid bool) {
	c.ties.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

func (c *Collector) OnUntie(n int) {
	c.unties.Add(float64(n))
}

func (c *Collector) OnScopeChanged(depth int) {
	c.scopeDepth.Set(float64(depth))
}

func (c *Collector) OnRejected(op, code string) {
	c.rejections.WithLabelValues(op, code).Inc()
}

func (c *Collector) OnQuery(query string, hits int) {
	c.queryHits.WithLabelValues(query).Observe(float64(hits))
}

func (c *Collector) OnStep(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.replaySteps.WithLabelValues(op, result).Inc()
	c.replayDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
