package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/gitfiti/provider"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gitfiti"

// Collector owns the relay's Prometheus metrics. Each Collector registers on
// its own registry so tests and multiple servers in one process do not clash.
type Collector struct {
	registry *prometheus.Registry

	stateVerifications *prometheus.CounterVec
	tokenExchanges     *prometheus.CounterVec
	apiRequests        *prometheus.CounterVec
	apiDuration        *prometheus.HistogramVec
	commitsPushed      prometheus.Counter
}

var _ provider.Recorder = (*Collector)(nil)

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stateVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_verifications_total",
			Help:      "OAuth callback state checks by result.",
		}, []string{"result"}),
		tokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_exchanges_total",
			Help:      "Authorization code exchanges by outcome.",
		}, []string{"outcome"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_api_requests_total",
			Help:      "Provider API requests by method and status code (0 for transport errors).",
		}, []string{"method", "code"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_api_request_duration_seconds",
			Help:      "Provider API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		commitsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_pushed_total",
			Help:      "Back-dated commits created on behalf of users.",
		}),
	}

	c.registry.MustRegister(
		c.stateVerifications,
		c.tokenExchanges,
		c.apiRequests,
		c.apiDuration,
		c.commitsPushed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveStateVerification counts a callback state check.
func (c *Collector) ObserveStateVerification(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	c.stateVerifications.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveTokenExchange(outcome string) {
	c.tokenExchanges.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveAPICall(method provider.Method, status int, elapsed time.Duration) {
	c.apiRequests.WithLabelValues(method.String(), strconv.Itoa(status)).Inc()
	c.apiDuration.WithLabelValues(method.String()).Observe(elapsed.Seconds())
}

func (c *Collector) AddCommitsPushed(n int) {
	if n > 0 {
		c.commitsPushed.Add(float64(n))
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
