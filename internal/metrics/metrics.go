// Package metrics exposes Prometheus collectors for builds, relay submissions
// and command executions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eureka_site"

// Collectors groups every site metric behind a single registry.
type Collectors struct {
	registry *prometheus.Registry

	pages       *prometheus.CounterVec
	pageSeconds *prometheus.HistogramVec
	builds      *prometheus.CounterVec
	buildSecs   *prometheus.HistogramVec
	submissions *prometheus.CounterVec
	submitSecs  *prometheus.HistogramVec
	commands    *prometheus.CounterVec
	commandSecs *prometheus.HistogramVec
}

// Option customises Collectors.
type Option func(*options)

type options struct {
	registry *prometheus.Registry
	runtime  bool
}

// WithRegistry registers collectors against registry instead of a fresh one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(o *options) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(o *options) {
		o.runtime = true
	}
}

// New builds the collectors.
func New(opts ...Option) *Collectors {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}
	if cfg.runtime {
		cfg.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(cfg.registry)
	return &Collectors{
		registry: cfg.registry,
		pages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "pages_total",
			Help:      "Rendered pages by locale and outcome",
		}, []string{"locale", "outcome"}),
		pageSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "page_render_seconds",
			Help:      "Page render time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"locale"}),
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "builds_total",
			Help:      "Site builds by outcome",
		}, []string{"outcome"}),
		buildSecs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "build_seconds",
			Help:      "Site build time in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "submissions_total",
			Help:      "Relay submissions by form kind and outcome",
		}, []string{"kind", "outcome"}),
		submitSecs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "submission_seconds",
			Help:      "Relay round trip time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "executions_total",
			Help:      "Command executions by command and status",
		}, []string{"command", "status"}),
		commandSecs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "commands",
			Name:      "execution_seconds",
			Help:      "Command execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

// Registry returns the underlying registry.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collectors) ObservePage(locale, outcome string, d time.Duration) {
	c.pages.WithLabelValues(locale, outcome).Inc()
	c.pageSeconds.WithLabelValues(locale).Observe(d.Seconds())
}

func (c *Collectors) ObserveBuild(outcome string, d time.Duration) {
	c.builds.WithLabelValues(outcome).Inc()
	c.buildSecs.WithLabelValues(outcome).Observe(d.Seconds())
}

func (c *Collectors) ObserveSubmission(kind, outcome string, d time.Duration) {
	c.submissions.WithLabelValues(kind, outcome).Inc()
	c.submitSecs.WithLabelValues(kind).Observe(d.Seconds())
}

func (c *Collectors) ObserveCommand(command, status string, d time.Duration) {
	c.commands.WithLabelValues(command, status).Inc()
	c.commandSecs.WithLabelValues(command).Observe(d.Seconds())
}
