// Package metrics exports lifecycle telemetry through Prometheus.
// A Collector owns a registry; each hosted service gets its own Observer
// from it, labeled with the service name.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/svchost/pkg/lifecycle"
)

// Collector holds the lifecycle metric families.
type Collector struct {
	registry *prometheus.Registry

	state           *prometheus.GaugeVec
	transitions     *prometheus.CounterVec
	failures        *prometheus.CounterVec
	setupLatency    *prometheus.HistogramVec
	teardownLatency *prometheus.HistogramVec
	stopRequests    *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "svchost"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.state = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "state",
			Help:      "Current lifecycle state (0=created, 1=setting_up, 2=running, 3=stop_requested, 4=tearing_down, 5=stopped, 6=faulted)",
		},
		[]string{"service"},
	)

	c.transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "transitions_total",
			Help:      "Total number of lifecycle state transitions",
		},
		[]string{"service", "from", "to"},
	)

	c.failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "failures_total",
			Help:      "Total number of phase failures",
		},
		[]string{"service", "phase"},
	)

	c.setupLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "setup_duration_seconds",
			Help:      "Time taken by the setup phase",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"service", "result"},
	)

	c.teardownLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "teardown_duration_seconds",
			Help:      "Time taken by the teardown phase",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"service", "result"},
	)

	c.stopRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "stop_requests_total",
			Help:      "Total number of stop requests by whether the service was running",
		},
		[]string{"service", "running"},
	)

	c.registry.MustRegister(
		c.state,
		c.transitions,
		c.failures,
		c.setupLatency,
		c.teardownLatency,
		c.stopRequests,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return c
}

// Registry returns the registry holding every metric of this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observer returns a lifecycle observer recording metrics for service.
func (c *Collector) Observer(service string) lifecycle.Observer {
	c.state.WithLabelValues(service).Set(float64(lifecycle.StateCreated))
	return &observer{c: c, service: service}
}

// observer records metrics for one service.
type observer struct {
	c       *Collector
	service string

	mu            sync.Mutex
	setupStart    time.Time
	teardownStart time.Time
}

func (o *observer) OnStateChange(previous, current lifecycle.State) {
	o.c.state.WithLabelValues(o.service).Set(float64(current))
	o.c.transitions.WithLabelValues(o.service, previous.String(), current.String()).Inc()
}

func (o *observer) OnBeforeSetup() {
	o.mu.Lock()
	o.setupStart = time.Now()
	o.mu.Unlock()
}

func (o *observer) OnSetupCompleted(success bool) {
	o.mu.Lock()
	start := o.setupStart
	o.mu.Unlock()
	if start.IsZero() {
		return
	}
	o.c.setupLatency.WithLabelValues(o.service, result(success)).Observe(time.Since(start).Seconds())
}

func (o *observer) OnSetupCanceled() {
	o.c.failures.WithLabelValues(o.service, "setup_canceled").Inc()
}

func (o *observer) OnSetupFailed(err error) {
	o.c.failures.WithLabelValues(o.service, "setup").Inc()
}

func (o *observer) OnBeforeExecute()    {}
func (o *observer) OnExecuteCompleted() {}
func (o *observer) OnExecuteCanceled()  {}

func (o *observer) OnExecuteFailed(err error) {
	o.c.failures.WithLabelValues(o.service, "execute").Inc()
}

func (o *observer) OnBeforeTeardown() {
	o.mu.Lock()
	o.teardownStart = time.Now()
	o.mu.Unlock()
}

func (o *observer) OnTeardownCompleted() {
	o.observeTeardown(true)
}

func (o *observer) OnTeardownFailed(err error) {
	o.c.failures.WithLabelValues(o.service, "teardown").Inc()
	o.observeTeardown(false)
}

func (o *observer) observeTeardown(success bool) {
	o.mu.Lock()
	start := o.teardownStart
	o.mu.Unlock()
	o.c.teardownLatency.WithLabelValues(o.service, result(success)).Observe(time.Since(start).Seconds())
}

func (o *observer) OnStopRequested(previous lifecycle.State, running bool) {
	label := "false"
	if running {
		label = "true"
	}
	o.c.stopRequests.WithLabelValues(o.service, label).Inc()
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

var _ lifecycle.Observer = (*observer)(nil)
