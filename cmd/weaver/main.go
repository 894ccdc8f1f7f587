// Command weaver evolves architecture patterns toward a stated intent and
// prints a Markdown report of the run.
//
// Usage:
//
//	weaver evolve -seed-file seed.yaml -intent "secure ecommerce backend"
//	weaver version
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loom-forge/weaver/archive"
	"github.com/loom-forge/weaver/core"
	"github.com/loom-forge/weaver/evolve"
	"github.com/loom-forge/weaver/generator"
	"github.com/loom-forge/weaver/llm"
	"github.com/loom-forge/weaver/pkg/cache"
	"github.com/loom-forge/weaver/pkg/logging"
	"github.com/loom-forge/weaver/pkg/metrics"
	"github.com/loom-forge/weaver/reflector"
	"github.com/loom-forge/weaver/report"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "evolve":
		if err := runEvolve(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("weaver %s\n", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: weaver <evolve|version> [flags]")
}

func runEvolve(args []string) error {
	cfg := evolve.LoadConfig()

	fs := flag.NewFlagSet("evolve", flag.ExitOnError)
	seedFile := fs.String("seed-file", "", "path to the seed pattern file (JSON or YAML)")
	intent := fs.String("intent", cfg.Intent, "target intent driving the evolution")
	iterations := fs.Int("iterations", cfg.Iterations, "offspring generations per lineage")
	lineages := fs.Int("variants", cfg.Lineages, "independent lineages for a single seed")
	dreamProb := fs.Float64("dream-probability", cfg.DreamProbability, "probability of a dream step per generation")
	randSeed := fs.Int64("rand-seed", cfg.RandomSeed, "random seed for reproducible runs (0 uses the clock)")
	weightsFile := fs.String("weights", "", "optional YAML file of pillar weights")
	archivePath := fs.String("archive", cfg.ArchivePath, "optional SQLite archive path")
	output := fs.String("o", "", "write the report to a file instead of stdout")
	offline := fs.Bool("offline", os.Getenv("OPENAI_API_KEY") == "", "use the deterministic offline capabilities")
	model := fs.String("model", "", "chat model for the online capabilities")
	baseURL := fs.String("base-url", "", "OpenAI-compatible API base URL")
	metricsAddr := fs.String("metrics-addr", "", "serve Prometheus metrics on this address during the run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *seedFile == "" {
		return fmt.Errorf("-seed-file is required")
	}
	if *intent == "" {
		return fmt.Errorf("-intent is required (or set WEAVER_INTENT)")
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.LogLevel,
		Format: "json",
		Output: "stderr",
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	slog.SetDefault(logger.GetSlog())

	m := metrics.NewPrometheusMetrics()
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	seeds, err := evolve.LoadSeeds(*seedFile)
	if err != nil {
		return err
	}

	weights, err := evolve.LoadPillarWeights(*weightsFile)
	if err != nil {
		return fmt.Errorf("failed to load pillar weights: %w", err)
	}

	var (
		synth core.Synthesizer
		eval  core.Evaluator
		judge core.Judge
	)
	if *offline {
		logger.Info("using offline capabilities")
		off := llm.NewOffline()
		synth, eval, judge = off, off, off
	} else {
		llmCfg := llm.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
		llmCfg.Timeout = cfg.CapabilityTimeout
		if *model != "" {
			llmCfg.Model = *model
		}
		if *baseURL != "" {
			llmCfg.BaseURL = *baseURL
		}
		client := llm.NewClient(llmCfg, m, logger)
		synth, eval, judge = client, client, client
	}

	evalCache, err := cache.NewEvalCache(nil)
	if err != nil {
		return err
	}
	eval = cache.NewCachedEvaluator(eval, evalCache, m)

	var archivist core.Archivist
	if *archivePath != "" {
		archivist, err = archive.NewSQLiteArchive(*archivePath)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
	} else {
		archivist = archive.NewMemoryArchive()
	}
	defer archivist.Close()

	seed := *randSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	controller := &evolve.Controller{
		Generator: generator.New(synth, seed),
		Scorer:    core.NewMeanScorer(eval, weights),
		Archivist: archivist,
		Metrics:   m,
		Logger:    logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := controller.Run(ctx, seeds, evolve.Options{
		Intent:     *intent,
		Iterations: *iterations,
		Lineages:   *lineages,
		DreamProb:  *dreamProb,
	})
	if err != nil {
		return err
	}

	topLineage := lineageByID(result, result.TopScore.LineageID)
	reflection, err := reflector.New(judge).Reflect(ctx, result.Original, result.Top, topLineage.History)
	if err != nil {
		logger.Warn("reflection failed, report will omit the verdict", "error", err)
		reflection = core.ReflectionReport{
			Diff:     core.DiffComponents(result.Original, result.Top.Pattern),
			Warnings: []string{"judge capability unavailable: " + err.Error()},
		}
	}

	rendered := report.New().Render(result, reflection)

	stats := evalCache.GetStats()
	logger.Info("run complete",
		"run_id", result.RunID,
		"top_lineage", result.TopScore.LineageID,
		"top_composite", result.TopScore.Composite,
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses,
	)

	if *output != "" {
		return os.WriteFile(*output, []byte(rendered), 0o644)
	}
	fmt.Print(rendered)
	return nil
}

func lineageByID(result core.RunResult, lineageID string) core.LineageResult {
	for _, lin := range result.Lineages {
		if lin.LineageID == lineageID {
			return lin
		}
	}
	return core.LineageResult{}
}
