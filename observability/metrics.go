package observability

import (
	"context"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// StoreMetrics are the telemetry of the object store server, on their own registry.
type StoreMetrics struct {
	Registry *prometheus.Registry

	requests *prometheus.CounterVec
	objects  *prometheus.CounterVec
	watchers prometheus.Gauge
}

func NewStoreMetrics() *StoreMetrics {
	m := &StoreMetrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "garden",
			Name:      "requests_total",
			Help:      "gRPC requests handled, by method and status code.",
		}, []string{"method", "code"}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "garden",
			Name:      "objects_total",
			Help:      "Objects written to the store, by operation.",
		}, []string{"operation"}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "garden",
			Name:      "watchers",
			Help:      "Open watch streams.",
		}),
	}
	heapAlloc := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "garden",
		Name:      "heap_alloc_bytes",
		Help:      "Current heap allocation in bytes.",
	}, func() float64 {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)
		return float64(stats.HeapAlloc)
	})
	m.Registry.MustRegister(m.requests, m.objects, m.watchers, heapAlloc)
	return m
}

func (m *StoreMetrics) ObjectWritten(operation string) {
	m.objects.WithLabelValues(operation).Inc()
}

func (m *StoreMetrics) WatchStarted() {
	m.watchers.Inc()
}

func (m *StoreMetrics) WatchEnded() {
	m.watchers.Dec()
}

// Requests returns the number of requests seen for the method and code.
func (m *StoreMetrics) Requests(method, code string) prometheus.Counter {
	return m.requests.WithLabelValues(method, code)
}

func (m *StoreMetrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		m.requests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}

func (m *StoreMetrics) StreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		m.requests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return err
	}
}
