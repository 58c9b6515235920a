// Command shamir reconstructs Shamir shared secrets from share documents.
//
// Each argument is a JSON or YAML document holding a threshold and a set of
// shares whose y values are written in mixed bases. The secret of each
// document is printed as "<file>: <secret>".
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"shamir/internal/platform/config"
	"shamir/internal/platform/logger"
	"shamir/internal/platform/metrics"
	"shamir/internal/recovery"
	"shamir/internal/store"

	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	usageFormat = "Usage: %s [flags] testcase1.json testcase2.json ...\n"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run wires the service from flags, config and environment, processes every
// file and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("shamir", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, usageFormat, fs.Name())
		fs.PrintDefaults()
	}
	var (
		configPath  = fs.String("config", "", "YAML config file")
		workers     = fs.Int("workers", 0, "jobs processed in parallel (default: number of CPUs)")
		verify      = fs.Bool("verify", false, "fail a job when a share beyond the threshold is off the polynomial")
		storePath   = fs.String("store", "", "directory of the result ledger")
		metricsFile = fs.String("metrics-file", "", "write Prometheus metrics to this file after the run")
		logLevel    = fs.String("log-level", "", "debug, info, warn or error")
		logFormat   = fs.String("log-format", "", "console or json")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = *workers
		case "verify":
			cfg.Verify = *verify
		case "store":
			cfg.StorePath = *storePath
		case "metrics-file":
			cfg.MetricsFile = *metricsFile
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer func() { _ = log.Sync() }()

	m := metrics.New()
	opts := []recovery.Option{
		recovery.WithLogger(log),
		recovery.WithMetrics(m),
		recovery.WithBasisCacheSize(cfg.CacheSize),
		recovery.WithVerifyExtras(cfg.Verify),
	}
	if cfg.StorePath != "" {
		ledger, err := store.Open(cfg.StorePath)
		if err != nil {
			log.Error("failed to open ledger", zap.String("path", cfg.StorePath), zap.Error(err))
			return exitUsage
		}
		defer ledger.Close()
		opts = append(opts, recovery.WithStore(ledger))
	}

	svc, err := recovery.New(opts...)
	if err != nil {
		log.Error("failed to create service", zap.Error(err))
		return exitUsage
	}
	log.Info("starting reconstruction",
		zap.String("run_id", svc.RunID()),
		zap.Int("files", fs.NArg()),
		zap.Int("workers", cfg.Workers))

	results := svc.RunFiles(ctx, fs.Args(), cfg.Workers)

	code := exitOK
	for _, res := range results {
		if !res.OK() {
			code = exitFailed
			fmt.Fprintf(stderr, "%s: error (%s): %v\n", res.JobID, recovery.Kind(res.Err), res.Err)
			continue
		}
		fmt.Fprintf(stdout, "%s: %s\n", res.JobID, res.Secret)
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("failed to write metrics", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	return code
}
