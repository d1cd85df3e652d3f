package metrics

import "time"

// Collector receives the outcome of every feed refresh.
type Collector interface {
	RefreshFailed(frame string)
	RefreshSucceeded(frame string, messages int, duration time.Duration)
}

type PrometheusCollector struct{}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{}
}

func (PrometheusCollector) RefreshFailed(frame string) {
	RefreshTotal.WithLabelValues(frame, "error").Inc()
}

func (PrometheusCollector) RefreshSucceeded(frame string, messages int, duration time.Duration) {
	RefreshTotal.WithLabelValues(frame, "success").Inc()
	ObserveRefreshDuration(frame, duration)
	FeedMessages.WithLabelValues(frame).Set(float64(messages))
}

// MultiCollector fans out to every wrapped collector in order.
type MultiCollector []Collector

func (m MultiCollector) RefreshFailed(frame string) {
	for _, c := range m {
		c.RefreshFailed(frame)
	}
}

func (m MultiCollector) RefreshSucceeded(frame string, messages int, duration time.Duration) {
	for _, c := range m {
		c.RefreshSucceeded(frame, messages, duration)
	}
}
