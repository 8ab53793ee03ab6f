package usecase

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/i2y/foxbridge/internal/usecase"

// Engine loads Apifox shares into sessions and synthesizes Interface records
// from them. It holds no per-share state; everything a call needs travels in
// the *domain.Session it is given.
type Engine struct {
	gateway     DocumentGateway
	generator   InterfaceGenerator
	concurrency int
	logger      *slog.Logger
	tracer      trace.Tracer
	synthesized metric.Int64Counter
}

// NewEngine creates a new Engine. concurrency caps how many endpoint
// descriptors one category fetches at once; below 1 every leaf is fetched at
// once.
func NewEngine(gateway DocumentGateway, generator InterfaceGenerator, concurrency int, logger *slog.Logger) *Engine {
	if concurrency < 1 {
		concurrency = -1
	}
	log := logger.With("usecase", "Engine")

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"foxbridge.interfaces.synthesized",
		metric.WithDescription("Number of Interface records synthesized"),
		metric.WithUnit("{interface}"),
	)
	if err != nil {
		log.Warn("Failed to create synthesized counter", slog.Any("error", err))
	}

	return &Engine{
		gateway:     gateway,
		generator:   generator,
		concurrency: concurrency,
		logger:      log,
		tracer:      otel.Tracer(instrumentationName),
		synthesized: counter,
	}
}
