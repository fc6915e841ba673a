package resolver

import (
	"context"
	"log/slog"
	"time"

	"github.com/njchilds90/golimit"
	"github.com/njchilds90/golimit/internal/metrics"
)

// Service wraps ResolveInput with logging, metrics and engine options.
// It is stateless and safe for concurrent use.
type Service struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	maxOrder int
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxOrder sets the highest series order the engine tries.
func WithMaxOrder(n int) Option {
	return func(s *Service) { s.maxOrder = n }
}

func NewService(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{logger: logger, maxOrder: golimit.DefaultMaxOrder}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve normalizes and resolves in, recording the outcome.
func (s *Service) Resolve(ctx context.Context, in RawInput) Result {
	start := time.Now()
	res := ResolveInput(in, golimit.WithMaxOrder(s.maxOrder))
	elapsed := time.Since(start)

	outcome := "ok"
	if !res.Success {
		outcome = res.Kind.String()
	}
	s.metrics.ObserveResolution(in.Side.Name(), outcome, elapsed)

	attrs := []any{
		"function", in.FunctionText,
		"point", in.PointText,
		"side", in.Side.Name(),
		"duration", elapsed,
	}
	if res.Success {
		s.logger.DebugContext(ctx, "limit resolved", append(attrs, "result", golimit.String(res.Value))...)
	} else {
		s.logger.InfoContext(ctx, "limit failed", append(attrs, "kind", outcome, "error", res.Detail)...)
	}
	return res
}
