package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/platform/kafka"
	"github.com/teranga-stays/service-rental/internal/platform/metrics"
)

const defaultEffectTimeout = 10 * time.Second

// SideEffect is a named best-effort action that runs after a primary write.
type SideEffect struct {
	Name string
	Run  func(ctx context.Context) error
}

// EffectRunner runs side effects after the primary operation has succeeded.
// Each effect is isolated from the caller's cancellation, bounded by its own
// timeout, and its failure or panic is logged and counted but never returned.
type EffectRunner struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewEffectRunner creates an EffectRunner. A zero timeout uses the default.
func NewEffectRunner(logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) *EffectRunner {
	if timeout <= 0 {
		timeout = defaultEffectTimeout
	}
	return &EffectRunner{logger: logger, metrics: m, timeout: timeout}
}

// Run executes effects in order. It returns the names of effects that failed.
func (r *EffectRunner) Run(ctx context.Context, effects ...SideEffect) []string {
	base := context.WithoutCancel(ctx)
	var failed []string
	for _, e := range effects {
		if err := r.runOne(base, e); err != nil {
			failed = append(failed, e.Name)
			r.metrics.SideEffectFailures.WithLabelValues(e.Name).Inc()
			r.logger.Warn("side effect failed",
				zap.String("effect", e.Name),
				zap.Error(err),
			)
		}
	}
	return failed
}

func (r *EffectRunner) runOne(base context.Context, e SideEffect) (err error) {
	ctx, cancel := context.WithTimeout(base, r.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return e.Run(ctx)
}

// publishEffect wraps a CloudEvent publication as a side effect.
func publishEffect(publisher EventPublisher, topic, eventType, subject string, data interface{}) SideEffect {
	return SideEffect{
		Name: "publish:" + eventType,
		Run: func(ctx context.Context) error {
			evt, err := kafka.NewCloudEvent(serviceName, eventType, data)
			if err != nil {
				return fmt.Errorf("failed to create cloud event: %w", err)
			}
			evt.Subject = subject
			return publisher.PublishEvent(ctx, topic, evt)
		},
	}
}
