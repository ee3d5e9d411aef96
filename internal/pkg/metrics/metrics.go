package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RouteLayers counts layers selected by the router, one increment per layer per question.
	RouteLayers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_route_layers_total",
		Help: "Layers selected by the query router",
	}, []string{"layer"})

	// RouteSource counts how each decision was reached (rules, directive, classifier, default).
	RouteSource = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_route_source_total",
		Help: "Query router decisions by source",
	}, []string{"source"})

	FunctionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_function_calls_total",
		Help: "Live data function invocations by outcome",
	}, []string{"function", "outcome"})

	FunctionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_function_duration_seconds",
		Help:    "Live data function latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"function"})

	RetrievalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_retrieval_duration_seconds",
		Help:    "Embedding plus vector search latency",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"outcome"})

	RetrievalChunks = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_retrieval_chunks",
		Help:    "Chunks returned per retrieval call",
		Buckets: []float64{0, 1, 2, 4, 8, 16},
	})

	StreamFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_stream_frames_total",
		Help: "Frames emitted by the answer streamer",
	}, []string{"type"})

	StreamOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_stream_outcomes_total",
		Help: "How answer streams ended: done, error or cancelled",
	}, []string{"outcome"})
)
