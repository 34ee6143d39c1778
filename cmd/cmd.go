package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/min1324/mpsc/internal/config"
	"github.com/min1324/mpsc/internal/log"
	"github.com/min1324/mpsc/internal/stress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// CmdMpscq builds the root command.
func CmdMpscq() *cobra.Command {
	root := &cobra.Command{
		Use:           "mpscq",
		Short:         "Intrusive MPSC queue tools",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.AddCommand(cmdStress())
	return root
}

type stressFlags struct {
	producers int
	nodes     int
	logLevel  string
	metrics   string
	json      bool
}

func cmdStress() *cobra.Command {
	flags := stressFlags{}
	cmd := &cobra.Command{
		Use:   "stress [CONFIG-FILE]",
		Short: "Push from many goroutines, pop from one, and verify every node arrives",
		Long: `Push from many goroutines, pop from one, and verify every node arrives
exactly once and in per-producer order.

Settings come from the optional YAML file, then from flags.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd, args, &flags)
		},
	}
	cmd.Flags().IntVarP(&flags.producers, "producers", "p", 0, "number of producer goroutines")
	cmd.Flags().IntVarP(&flags.nodes, "nodes", "n", 0, "nodes pushed by each producer")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (TRACE, DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().StringVar(&flags.metrics, "metrics", "", "serve prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&flags.json, "json", false, "log as JSON")
	return cmd
}

func runStress(cmd *cobra.Command, args []string, flags *stressFlags) (err error) {
	cfg := config.DefaultConfig()
	if len(args) == 1 {
		if cfg, err = config.ReadFile(args[0]); err != nil {
			return err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("producers") {
		cfg.Producers = flags.producers
	}
	if fs.Changed("nodes") {
		cfg.NodesPerProducer = flags.nodes
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if fs.Changed("metrics") {
		cfg.MetricsAddr = flags.metrics
	}
	if err = cfg.Parse(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewText(cmd.ErrOrStderr())
	if flags.json {
		logger = log.NewJson(cmd.ErrOrStderr())
	}
	logger.SetLevel(cfg.Level())
	prevLogger := log.Default()
	log.SetDefault(logger)
	defer log.SetDefault(prevLogger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := stress.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(nil, "Metrics server stopped", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
		defer srv.Close()
		log.Info(nil, "Serving metrics", "addr", cfg.MetricsAddr)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := stress.NewRunner(cfg, logger, metrics).Run(ctx)
	if err != nil {
		return fmt.Errorf("stress run failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pushed:  %d\n", rep.Pushed)
	fmt.Fprintf(out, "popped:  %d\n", rep.Popped)
	fmt.Fprintf(out, "empty:   %d\n", rep.EmptyReports)
	fmt.Fprintf(out, "elapsed: %v\n", rep.Elapsed)
	fmt.Fprintf(out, "rate:    %.2f M nodes/sec\n", float64(rep.Popped)/rep.Elapsed.Seconds()/1e6)
	return nil
}
