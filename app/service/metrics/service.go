package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
)

type Service struct {
	registry *prometheus.Registry

	replies          *prometheus.CounterVec
	fallbackTopics   *prometheus.CounterVec
	upstreamFailures *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
}

func New(_ *do.Injector) (*Service, error) {
	return NewService(), nil
}

// NewService creates collectors on a private registry.
func NewService() *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_chat_replies_total",
				Help: "Chat replies by source",
			},
			[]string{"source"},
		),
		fallbackTopics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_fallback_topics_total",
				Help: "Fallback templates selected by topic",
			},
			[]string{"topic"},
		),
		upstreamFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusbot_upstream_failures_total",
				Help: "Failed upstream completions by reason",
			},
			[]string{"reason"},
		),
		upstreamLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "campusbot_upstream_duration_seconds",
				Help:    "Duration of upstream completion calls",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.replies,
		s.fallbackTopics,
		s.upstreamFailures,
		s.upstreamLatency,
	)

	return s
}

func (s *Service) ObserveReply(source string) {
	s.replies.WithLabelValues(source).Inc()
}

func (s *Service) ObserveFallbackTopic(topic string) {
	s.fallbackTopics.WithLabelValues(topic).Inc()
}

func (s *Service) ObserveUpstreamFailure(reason string) {
	s.upstreamFailures.WithLabelValues(reason).Inc()
}

func (s *Service) ObserveUpstreamLatency(d time.Duration) {
	s.upstreamLatency.Observe(d.Seconds())
}

func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
