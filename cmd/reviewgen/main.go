package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Prvargas/Online-Reviews-Analysis/internal/config"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/dataset"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/demographic"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/export"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/logging"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/metrics"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/review"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/sampling"
	"github.com/Prvargas/Online-Reviews-Analysis/internal/textgen"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	useMock := flag.Bool("mock", false, "use the mock text generator instead of a real LLM backend")
	seed := flag.Int64("seed", 0, "override the random seed")
	outDir := flag.String("out", "", "override the output directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *useMock {
		cfg.TextGen.Mock = true
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()
	logger = logger.With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("generation failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

// run generates customers and reviews, joins them and writes every table.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	start := time.Now()

	rcfg, err := reviewConfig(cfg, cfg.Customers.Count)
	if err != nil {
		return err
	}
	if err := rcfg.Validate(); err != nil {
		return err
	}

	// Customers and reviews each draw from their own stream, so the review
	// plan does not depend on how many customers were sampled.
	customers, err := demographic.Generate(cfg.Customers.Count, sampling.New(cfg.Seed))
	if err != nil {
		return err
	}
	metrics.CustomersGenerated.Add(float64(len(customers)))
	logger.Info("customers generated", "count", len(customers), "seed", cfg.Seed)

	gen, err := textgen.Build(textgen.Options{
		Provider:  cfg.TextGen.Provider,
		Model:     cfg.TextGen.Model,
		APIKey:    cfg.TextGen.APIKey,
		BaseURL:   cfg.TextGen.BaseURL,
		MaxTokens: cfg.TextGen.MaxTokens,
		Timeout:   cfg.TextGen.Timeout,
		Retry: textgen.RetryPolicy{
			MaxRetries:      cfg.TextGen.MaxRetries,
			InitialInterval: textgen.DefaultRetryPolicy().InitialInterval,
			MaxInterval:     textgen.DefaultRetryPolicy().MaxInterval,
		},
	}, cfg.TextGen.Mock)
	if err != nil {
		return err
	}
	logger.Info("text generator ready", "provider", gen.Name(), "concurrency", cfg.Reviews.Concurrency)

	exec := &review.Executor{
		Generator:   gen,
		Concurrency: cfg.Reviews.Concurrency,
		OnError:     review.OnError(cfg.Reviews.OnError),
		Logger:      logger,
	}
	res, err := review.Generate(ctx, rcfg, sampling.New(cfg.Seed), exec)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		logger.Warn("review skipped", "review_id", s.ReviewID, "provider", s.Provider, "error", s.Err)
	}
	logger.Info("reviews generated", "count", len(res.Reviews), "skipped", len(res.Skipped))

	sink, err := buildSink(ctx, cfg.Output)
	if err != nil {
		return err
	}
	defer sink.Close()

	tables := []export.Table{
		export.CustomersTable(customers),
		export.ReviewsTable(res.Reviews),
	}
	if cfg.Output.Merged {
		rows, err := dataset.Merge(customers, res.Reviews)
		if err != nil {
			return err
		}
		tables = append(tables, export.MergedTable(rows))
	}
	for _, t := range tables {
		if err := sink.Write(ctx, t); err != nil {
			return err
		}
	}

	logger.Info("run complete", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func reviewConfig(cfg config.Config, numCustomers int) (review.Config, error) {
	rc := review.Config{
		CompanyName:  cfg.Reviews.CompanyName,
		NumCustomers: numCustomers,
		NumReviews:   cfg.Reviews.Count,
		StartDate:    cfg.Reviews.StartDate.Time,
		EndDate:      cfg.Reviews.EndDate.Time,
		RatingMeans:  cfg.Reviews.RatingMeans,
		StdDev:       cfg.Reviews.StdDev,
	}
	if cfg.Reviews.PromptsPath != "" {
		catalog, err := review.LoadCatalog(cfg.Reviews.PromptsPath)
		if err != nil {
			return review.Config{}, err
		}
		rc.Prompts = catalog
	}
	return rc, nil
}

// buildSink always writes local files; S3 and Kafka are added when configured.
func buildSink(ctx context.Context, out config.OutputConfig) (export.MultiSink, error) {
	sinks := export.MultiSink{&export.FileSink{Dir: out.Dir, Format: out.Format}}

	if out.S3.Bucket != "" {
		s3sink, err := export.NewS3Sink(ctx, export.S3Options{
			Bucket:   out.S3.Bucket,
			Prefix:   out.S3.Prefix,
			Region:   out.S3.Region,
			Endpoint: out.S3.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3sink)
	}
	if len(out.Kafka.Brokers) > 0 && out.Kafka.Topic != "" {
		sinks = append(sinks, export.NewKafkaSink(out.Kafka.Brokers, out.Kafka.Topic))
	}
	return sinks, nil
}
