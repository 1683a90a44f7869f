package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface on top of Prometheus collectors.
type Prometheus struct {
	loads       *prometheus.CounterVec
	generations *prometheus.CounterVec
	objects     prometheus.Histogram
	duration    *prometheus.HistogramVec
	phases      *prometheus.HistogramVec
	decorators  *prometheus.CounterVec
	cache       *prometheus.CounterVec
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchtower_document_loads_total",
			Help: "Documents loaded, by result.",
		}, []string{"result"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchtower_generations_total",
			Help: "Artboards converted, by result.",
		}, []string{"result"}),
		objects: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sketchtower_generated_objects",
			Help:    "Objects per generated tree.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "sketchtower_stage_duration_seconds",
			Help: "Duration of pipeline stages.",
		}, []string{"stage"}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "sketchtower_phase_duration_seconds",
			Help: "Duration of decoration phases.",
		}, []string{"phase"}),
		decorators: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchtower_decorator_errors_total",
			Help: "Decorator failures, by phase and kind.",
		}, []string{"phase", "kind"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchtower_cache_events_total",
			Help: "Cache hits, misses and writes.",
		}, []string{"event", "type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sketchtower_http_requests_total",
			Help: "HTTP responses, by route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "sketchtower_http_request_duration_seconds",
			Help: "HTTP request latency.",
		}, []string{"method", "path"}),
	}
	reg.MustRegister(p.loads, p.generations, p.objects, p.duration, p.phases,
		p.decorators, p.cache, p.requests, p.latency)
	return p
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnLoadStart(context.Context, string) {}

func (p *Prometheus) OnLoadComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	p.loads.WithLabelValues(result(err)).Inc()
	p.duration.WithLabelValues("load").Observe(d.Seconds())
}

func (p *Prometheus) OnGenerateStart(context.Context, string) {}

func (p *Prometheus) OnGenerateComplete(_ context.Context, _ string, objects int, d time.Duration, err error) {
	p.generations.WithLabelValues(result(err)).Inc()
	p.duration.WithLabelValues("generate").Observe(d.Seconds())
	if err == nil {
		p.objects.Observe(float64(objects))
	}
}

func (p *Prometheus) OnRenderStart(context.Context, string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, format string, d time.Duration, _ error) {
	p.duration.WithLabelValues("render_" + format).Observe(d.Seconds())
}

func (p *Prometheus) OnPhaseComplete(phase string, _ int, d time.Duration) {
	p.phases.WithLabelValues(phase).Observe(d.Seconds())
}

func (p *Prometheus) OnDecoratorError(phase, kind string) {
	p.decorators.WithLabelValues(phase, kind).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cache.WithLabelValues("hit", keyType).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cache.WithLabelValues("miss", keyType).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cache.WithLabelValues("set", keyType).Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	p.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.latency.WithLabelValues(method, path).Observe(d.Seconds())
}

var (
	_ PipelineHooks  = (*Prometheus)(nil)
	_ GeneratorHooks = (*Prometheus)(nil)
	_ CacheHooks     = (*Prometheus)(nil)
	_ HTTPHooks      = (*Prometheus)(nil)
)
