package stress_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/min1324/mpsc/internal/config"
	"github.com/min1324/mpsc/internal/log"
	"github.com/min1324/mpsc/internal/stress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newRunner(t *testing.T, cfg *config.Config) (*stress.Runner, *stress.Metrics, *bytes.Buffer) {
	require.NoError(t, cfg.Parse())
	var buf bytes.Buffer
	logger := log.NewText(&buf)
	logger.SetLevel(cfg.Level())
	metrics := stress.NewMetrics(prometheus.NewRegistry())
	return stress.NewRunner(cfg, logger, metrics), metrics, &buf
}

func TestRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Producers = 8
	cfg.NodesPerProducer = 1 << 12

	r, metrics, buf := newRunner(t, cfg)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, cfg.Total(), rep.Pushed)
	require.Equal(t, cfg.Total(), rep.Popped)
	require.True(t, rep.Elapsed > 0)

	require.Equal(t, float64(cfg.Total()), testutil.ToFloat64(metrics.Pushed))
	require.Equal(t, float64(cfg.Total()), testutil.ToFloat64(metrics.Popped))
	require.Equal(t, float64(rep.EmptyReports), testutil.ToFloat64(metrics.EmptyReports))
	require.Contains(t, buf.String(), "Run finished")
}

func TestRunSingleProducer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Producers = 1
	cfg.NodesPerProducer = 1000

	r, _, _ := newRunner(t, cfg)
	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1000, rep.Popped)
}

func TestRunCanceled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.NodesPerProducer = 1 << 10

	r, _, buf := newRunner(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Contains(t, buf.String(), "Run failed")

	// producers stop before their first push
	require.Zero(t, rep.Pushed)
	require.Zero(t, rep.Popped)
	require.Less(t, rep.Pushed, cfg.Total())
}

func TestAwaitCanceledDuringBackoff(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PopAttempts = 10
	cfg.PopBackoff_us = uint64(time.Minute / time.Microsecond)

	r, _, _ := newRunner(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	rep, err := r.AwaitEmpty(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 10*time.Second)
	require.Equal(t, 1, rep.EmptyReports)
}

func TestAwaitAttempts(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PopAttempts = 3

	r, _, _ := newRunner(t, cfg)
	rep, err := r.AwaitEmpty(context.Background())
	require.Error(t, err)
	require.Equal(t, 3, rep.EmptyReports)
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	stress.NewMetrics(reg)
	require.Panics(t, func() { stress.NewMetrics(reg) })
}
