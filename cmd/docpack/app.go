package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jonathan/docpack/internal/analysis"
	"github.com/jonathan/docpack/internal/config"
	"github.com/jonathan/docpack/internal/enrich"
	"github.com/jonathan/docpack/internal/generators"
	"github.com/jonathan/docpack/internal/llm"
	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/observability"
	"github.com/jonathan/docpack/internal/pipeline"
)

// commonFlags are shared by generate and serve.
type commonFlags struct {
	configPath  string
	apiKey      string
	databaseURL string
	marketFile  string
	verbose     bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&f.marketFile, "market-data", "", "YAML or JSON file of market data by location")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// loadConfig reads the config file, applies flags that were set explicitly,
// falls back to the conventional environment variables and fills defaults.
func (f *commonFlags) loadConfig(cmd *cobra.Command) (config.Config, error) {
	loaded, err := config.LoadConfig(f.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := *loaded

	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if cmd.Flags().Changed("market-data") {
		cfg.MarketDataFile = f.marketFile
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// app holds everything a command needs to run packages.
type app struct {
	cfg          config.Config
	logger       *logging.Logger
	metrics      *observability.Metrics
	orchestrator *pipeline.Orchestrator
	closers      []func(context.Context) error
}

// buildApp wires the orchestrator. Without an API key the orchestrator runs
// with no generators, so every document is a fallback; offline must be set
// to allow that.
func buildApp(ctx context.Context, cfg config.Config, offline bool) (*app, error) {
	logger, err := logging.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(prometheus.NewRegistry()),
	}
	a.closers = append(a.closers, func(context.Context) error { logger.Sync(); return nil })

	shutdown, err := observability.InitTracing(ctx, logger, observability.TracingConfig{
		Enabled:     cfg.Tracing,
		ServiceName: "docpack",
		Exporter:    cfg.TraceExporter,
		SampleRatio: cfg.TraceRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	enricher, err := newEnricher(cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(a.metrics),
		pipeline.WithTracer(observability.Tracer()),
		pipeline.WithEnricher(enricher),
	}

	if cfg.APIKey == "" {
		if !offline {
			a.close()
			return nil, errors.New("an API key is required (--api-key, GEMINI_API_KEY or api_key in config); use --offline to produce fallback documents only")
		}
		logger.Warn("running offline, every document will be a fallback")
		a.orchestrator = pipeline.New(cfg.ToPipelineConfig(), nil, analysis.NewAnalyzer(nil, logger), opts...)
		return a, nil
	}

	client, err := llm.NewClient(ctx, cfg.ToLLMConfig(), cfg.APIKey)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	client = llm.Wrap(client,
		llm.WithLogging(logger),
		llm.WithRetry(cfg.MaxRetries, 500*time.Millisecond),
	)
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })

	gens := generators.NewLLMGenerators(client).WithPriorExcerptChars(cfg.PriorExcerpt)
	analyzer := analysis.NewAnalyzer(analysis.NewLLMSummarizer(client, cfg.ExcerptChars), logger)
	a.orchestrator = pipeline.New(cfg.ToPipelineConfig(), gens, analyzer, opts...)
	return a, nil
}

func newEnricher(cfg config.Config, logger *logging.Logger) (*enrich.Enricher, error) {
	var source enrich.MarketSource
	if cfg.MarketDataFile != "" {
		static, err := enrich.LoadStaticSource(cfg.MarketDataFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load market data: %w", err)
		}
		logger.Debug("loaded market data", "file", cfg.MarketDataFile, "locations", static.Len())
		source = static
	}
	enricher, err := enrich.New(source, cfg.MarketCacheLen, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create market enricher: %w", err)
	}
	return enricher, nil
}

// close runs closers in reverse order, using a short timeout for flushes.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}
