// Package stress runs many producers against one consumer of an mpsc.Queue
// and checks that every pushed node comes out exactly once, in per-producer
// order.
package stress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v3"
	"github.com/min1324/mpsc"
	"github.com/min1324/mpsc/internal/config"
	"github.com/min1324/mpsc/internal/log"
	"golang.org/x/sync/errgroup"
)

var errEmpty = errors.New("queue reported empty")

// item is the payload of every node: who pushed it and in which order.
type item struct {
	producer int
	seq      int
}

type Report struct {
	Pushed       int
	Popped       int
	EmptyReports int
	Elapsed      time.Duration
}

type Runner struct {
	cfg     *config.Config
	log     *log.Logger
	metrics *Metrics
}

// NewRunner returns a runner for a parsed configuration.
func NewRunner(cfg *config.Config, logger *log.Logger, metrics *Metrics) *Runner {
	return &Runner{cfg: cfg, log: logger, metrics: metrics}
}

func (r *Runner) String() string {
	return "stress"
}

// Run pushes Producers*NodesPerProducer nodes and pops them all on the
// calling goroutine.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout())
	defer cancel()

	q := mpsc.New[item]()
	c, err := q.Consumer()
	if err != nil {
		return nil, err
	}

	// each producer owns a slab of nodes for the whole run
	slabs := make([][]mpsc.Node[item], r.cfg.Producers)
	for p := range slabs {
		slabs[p] = make([]mpsc.Node[item], r.cfg.NodesPerProducer)
		for i := range slabs[p] {
			slabs[p][i].Value = item{producer: p, seq: i}
		}
	}

	r.log.Info(r, "Run started",
		"producers", r.cfg.Producers,
		"nodes", r.cfg.NodesPerProducer)

	rep := &Report{}
	start := time.Now()

	var pushed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, slab := range slabs {
		g.Go(func() error {
			for i := range slab {
				if err := gctx.Err(); err != nil {
					return err
				}
				q.Push(&slab[i])
				pushed.Add(1)
				r.metrics.Pushed.Inc()
			}
			return nil
		})
	}

	consumeErr := r.consume(gctx, c, rep)
	if consumeErr != nil {
		cancel()
	}
	if err := g.Wait(); err != nil && consumeErr == nil {
		consumeErr = fmt.Errorf("producer failed: %w", err)
	}

	rep.Elapsed = time.Since(start)
	rep.Pushed = int(pushed.Load())
	r.metrics.Duration.Observe(rep.Elapsed.Seconds())
	if consumeErr != nil {
		r.log.Error(r, "Run failed", "err", consumeErr, "pushed", rep.Pushed, "popped", rep.Popped)
		return rep, consumeErr
	}

	// every producer has returned, nothing can be pending
	if n, ok := c.Pop(); ok {
		return rep, fmt.Errorf("extra node after run: %+v", n.Value)
	}

	r.log.Info(r, "Run finished",
		"popped", rep.Popped,
		"empty", rep.EmptyReports,
		"elapsed", rep.Elapsed)
	return rep, nil
}

// consume pops until every node has been seen, checking each producer's
// nodes arrive in push order with none missing or repeated.
func (r *Runner) consume(ctx context.Context, c *mpsc.Consumer[item], rep *Report) error {
	next := make([]int, r.cfg.Producers)
	for rep.Popped < r.cfg.Total() {
		n, err := r.await(ctx, c, rep)
		if err != nil {
			return fmt.Errorf("after %d of %d nodes: %w", rep.Popped, r.cfg.Total(), err)
		}

		v := n.Value
		if v.producer < 0 || v.producer >= len(next) {
			return fmt.Errorf("node from unknown producer %d", v.producer)
		}
		if v.seq != next[v.producer] {
			return fmt.Errorf("producer %d: got node %d, want %d", v.producer, v.seq, next[v.producer])
		}
		next[v.producer]++
		rep.Popped++
		r.metrics.Popped.Inc()

		if r.log.HasTrace() {
			r.log.Trace(r, "Popped", "producer", v.producer, "seq", v.seq)
		}
	}
	return nil
}

// await retries Pop until it returns a node. An empty report only means the
// node is not linked yet, so it is retried rather than treated as the end.
func (r *Runner) await(ctx context.Context, c *mpsc.Consumer[item], rep *Report) (*mpsc.Node[item], error) {
	var n *mpsc.Node[item]
	err := retry.Do(
		func() error {
			var ok bool
			if n, ok = c.Pop(); !ok {
				rep.EmptyReports++
				r.metrics.EmptyReports.Inc()
				return errEmpty
			}
			return nil
		},
		retry.Attempts(r.cfg.PopAttempts),
		retry.Delay(r.cfg.PopBackoff()),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return n, nil
}
