package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/teranga-stays/service-rental/internal/platform/metrics"
)

func TestEffectRunner(t *testing.T) {
	m := metrics.New("test")
	runner := NewEffectRunner(zap.NewNop(), m, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran []string
	failed := runner.Run(ctx,
		SideEffect{Name: "ok", Run: func(ctx context.Context) error {
			ran = append(ran, "ok")
			return ctx.Err()
		}},
		SideEffect{Name: "fails", Run: func(context.Context) error {
			ran = append(ran, "fails")
			return errors.New("boom")
		}},
		SideEffect{Name: "panics", Run: func(context.Context) error {
			ran = append(ran, "panics")
			panic("unexpected")
		}},
		SideEffect{Name: "slow", Run: func(ctx context.Context) error {
			ran = append(ran, "slow")
			<-ctx.Done()
			return ctx.Err()
		}},
	)

	assert.Equal(t, []string{"ok", "fails", "panics", "slow"}, ran)
	assert.Equal(t, []string{"fails", "panics", "slow"}, failed)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SideEffectFailures.WithLabelValues("fails")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.SideEffectFailures.WithLabelValues("ok")))
}
