package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/aggregator"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/analysis"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/classifier"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/extractor"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/scoring"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/storage"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/weighting"
	"github.com/GustavoDePieri/ontop-feedback-dashboard/pkg/config"
)

func main() {
	var (
		configPath    = flag.String("config", "config.yaml", "path to config file (optional)")
		clientID      = flag.String("client", "", "process a single client ID")
		clientsFile   = flag.String("clients-file", "", "path to a target-accounts JSON file")
		periodDays    = flag.Int("period-days", 0, "look back this many days (default: all time)")
		analyze       = flag.Bool("analyze", false, "run the per-conversation classification stage before aggregating")
		conversations = flag.String("conversations", "", "path to a conversations JSON file for --analyze")
		batchSize     = flag.Int("batch-size", 50, "max conversations to analyze in one run")
		reAnalyze     = flag.Bool("re-analyze", false, "re-score conversations that were already analyzed")
		analyzeAll    = flag.Bool("analyze-all", false, "score agent messages too, not only customer-authored ones")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfgPath := *configPath
	if _, err := os.Stat(cfgPath); err != nil {
		cfgPath = ""
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	period := models.Period{}
	if *periodDays > 0 {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -*periodDays)
		period = models.Period{Start: &start, End: &end}
		logger.Info("Processing period",
			zap.Time("start", start),
			zap.Time("end", end))
	} else {
		logger.Info("Processing all-time data")
	}

	if *analyze {
		if *conversations == "" {
			logger.Fatal("--analyze requires --conversations")
		}

		var clf classifier.Classifier
		if cfg.Classifier.UseKeywordFallback || cfg.OpenAI.APIKey == "" {
			logger.Info("Using keyword classifier")
			clf = classifier.NewKeywordClassifier()
		} else {
			logger.Info("Using OpenAI classifier", zap.String("model", cfg.OpenAI.Model))
			clf = classifier.NewOpenAIClassifier(classifier.OpenAIOptions{
				APIKey:            cfg.OpenAI.APIKey,
				Model:             cfg.OpenAI.Model,
				MaxTokens:         cfg.OpenAI.MaxTokens,
				Temperature:       cfg.OpenAI.Temperature,
				Timeout:           time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
				RequestsPerSecond: cfg.OpenAI.RequestsPerSecond,
			}, logger)
		}

		analyzer := analysis.New(
			clf,
			extractor.NewDefault(),
			scoring.NewScorer(cfg.Rules),
			store,
			analysis.Options{
				ChunkSize:         cfg.Classifier.ChunkSize,
				Concurrency:       cfg.Classifier.Concurrency,
				IncludeAllAuthors: cfg.Classifier.IncludeAllAuthors || *analyzeAll,
				Reanalyze:         *reAnalyze,
			},
			logger,
		)

		source := analysis.NewJSONFileSource(*conversations)
		convs, err := source.ListConversations(ctx, *batchSize)
		if err != nil {
			logger.Fatal("Failed to load conversations", zap.Error(err))
		}

		tally := analyzer.Run(ctx, convs)
		if tally.Failed > 0 {
			os.Exit(1)
		}
	}

	engine := weighting.NewEngine(time.Now().UTC())
	agg := aggregator.New(engine, nil)
	runner := aggregator.NewRunner(store, agg, cfg.Aggregation.Workers, logger)

	var tally aggregator.Tally
	switch {
	case *clientID != "":
		tally, err = runner.Run(ctx, []string{*clientID}, period)
	case *clientsFile != "":
		ids, loadErr := config.LoadClientList(*clientsFile)
		if loadErr != nil {
			logger.Fatal("Failed to load client list", zap.Error(loadErr))
		}
		if len(ids) == 0 {
			logger.Fatal("Client list is empty", zap.String("path", *clientsFile))
		}
		tally, err = runner.Run(ctx, ids, period)
	default:
		tally, err = runner.RunAll(ctx, period)
	}
	if err != nil {
		logger.Error("Aggregation interrupted", zap.Error(err))
		os.Exit(1)
	}

	if tally.Failed > 0 {
		os.Exit(1)
	}
}
