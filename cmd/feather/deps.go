package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/application/handlers"
	"github.com/ersonp/feather/internal/domain/ports"
	"github.com/ersonp/feather/internal/domain/services"
	"github.com/ersonp/feather/internal/infrastructure/cache/redis"
	"github.com/ersonp/feather/internal/infrastructure/config"
	embedder "github.com/ersonp/feather/internal/infrastructure/embedder/openai"
	llm "github.com/ersonp/feather/internal/infrastructure/llm/openai"
	"github.com/ersonp/feather/internal/infrastructure/logging"
	"github.com/ersonp/feather/internal/infrastructure/metrics"
	"github.com/ersonp/feather/internal/infrastructure/publisher"
	"github.com/ersonp/feather/internal/infrastructure/relationaldb/sqlite"
	"github.com/ersonp/feather/internal/infrastructure/vectordb/qdrant"
	"github.com/ersonp/feather/internal/infrastructure/wikimedia"
)

// Deps holds high-level dependencies for commands.
// Only handlers are exposed - services and repositories are internal.
type Deps struct {
	Config            *config.Config
	Channel           string
	RunLock           string
	Logger            *zap.Logger
	PostHandler       *handlers.PostHandler
	QuizHandler       *handlers.QuizHandler
	CadenceHandler    *handlers.CadenceHandler
	HistoryHandler    *handlers.HistoryHandler
	SuggestionHandler *handlers.SuggestionHandler
	ImportHandler     *handlers.ImportHandler
}

// internalDeps holds all dependencies including low-level components.
// Used internally by helper functions.
type internalDeps struct {
	Deps
	relationalDB *sqlite.Repository
	metrics      *metrics.Recorder
}

// withDeps loads config and builds dependencies, then calls the provided function.
// It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(&d.Deps)
	})
}

// withInternalDeps provides access to all dependencies including low-level components.
func withInternalDeps(fn func(*internalDeps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	channels, err := config.LoadChannels(cwd)
	if err != nil {
		return fmt.Errorf("loading channels: %w", err)
	}

	if len(channels.Channels) == 0 {
		return errNoChannel
	}
	channel, err := channels.Resolve(globalChannel)
	if err != nil {
		return err
	}
	entry, err := channels.Get(channel)
	if err != nil {
		return err
	}
	if entry.Region != "" {
		cfg.Pipeline.Region = entry.Region
	}

	logger, err := logging.New(globalLogMode, globalVerbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("channel", channel))

	relationalDB, err := sqlite.NewRepository(config.SQLiteConfig{Path: config.SQLitePathForChannel(cwd, channel)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer relationalDB.Close()

	// Ensure schema exists
	ctx := context.Background()
	if err := relationalDB.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	// Optional collaborators: a missing credential or endpoint disables the
	// component and the pipeline falls back around it.
	var generator ports.TextGenerator
	if client, err := llm.NewClient(cfg.LLM); err == nil {
		generator = client
	} else {
		logger.Warn("text generation disabled", zap.Error(err))
	}

	var (
		emb   ports.Embedder
		index ports.FactIndex
	)
	if cfg.Qdrant.Host != "" {
		e, err := embedder.NewEmbedder(cfg.Embedder)
		if err != nil {
			logger.Warn("fact index disabled", zap.Error(err))
		} else {
			qdrantCfg := cfg.Qdrant
			qdrantCfg.Collection = entry.Collection
			repo, err := qdrant.NewRepository(qdrantCfg)
			if err != nil {
				return fmt.Errorf("creating qdrant repository: %w", err)
			}
			defer repo.Close()
			emb, index = e, repo
		}
	}

	var cache ports.ImageCache
	if cfg.Redis.URL != "" {
		c, err := redis.NewCache(cfg.Redis)
		if err != nil {
			return fmt.Errorf("creating image cache: %w", err)
		}
		defer c.Close()
		cache = c
	}

	pub, err := publisher.Open(cfg.Publisher, publisher.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	recorder := metrics.New()
	defer func() {
		if err := recorder.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			logger.Warn("writing metrics failed", zap.Error(err))
		}
	}()

	wiki := wikimedia.NewClient(cfg.Wikimedia, wikimedia.WithLogger(logger))
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(os.Getpid())))

	curated := services.DefaultCuratedData()
	keywords := services.NewKeywordClassifier(services.DefaultKeywordSets())
	classifier := services.NewSubjectClassifier(wiki, keywords, curated, logger)

	mediaSources := services.MediaSources{
		Reference:   wiki,
		Search:      wiki,
		Cache:       cache,
		Generator:   generator,
		Curated:     curated,
		Qualifier:   cfg.Wikimedia.SearchQualifier,
		SearchLimit: DefaultSearchLimit,
	}
	media := services.NewMediaResolver(
		services.NewRealnessFilter(services.DefaultRealnessRules()),
		wiki,
		services.DefaultMediaStrategies(mediaSources),
		services.WithImageCache(cache),
		services.WithMediaMetrics(recorder),
		services.WithMediaLogger(logger),
	)

	suggestionService := services.NewSuggestionService(relationalDB, relationalDB, keywords, relationalDB, logger,
		services.WithApprovalValidator(classifier))

	selector := services.NewCandidateSelector(curated, classifier, selectorConfig(cfg.Pipeline),
		services.WithCatalog(wiki),
		services.WithCandidateGenerator(generator, media),
		services.WithSuggestions(relationalDB),
		services.WithSelectorMetrics(recorder),
		services.WithSelectorRand(rng),
		services.WithSelectorLogger(logger),
	)

	factOpts := []services.FactOption{
		services.WithFactMetrics(recorder),
		services.WithFactLogger(logger),
	}
	if index != nil {
		factOpts = append(factOpts, services.WithFactIndex(emb, index))
	}
	facts := services.NewFactGenerator(generator, relationalDB, curated, factConfig(cfg.Pipeline), factOpts...)

	pipeline := services.NewPipeline(services.PipelineDeps{
		History:     relationalDB,
		Reference:   wiki,
		Selector:    selector,
		Facts:       facts,
		Media:       media,
		Description: services.NewDescriptionComposer(generator, recorder, logger),
		Logger:      logger,
	})

	postHandler := handlers.NewPostHandler(pipeline, pub, relationalDB,
		handlers.WithPostIndex(emb, index),
		handlers.WithPostSuggestions(suggestionService),
		handlers.WithPostAudit(relationalDB),
		handlers.WithPostMetrics(recorder),
		handlers.WithPostLogger(logger),
	)

	quizComposer := services.NewQuizComposer(generator, curated, services.DefaultFactGate(), rng, logger)
	quizHandler := handlers.NewQuizHandler(relationalDB, quizComposer, pub, relationalDB, recorder, cfg.Pipeline.QuizWindow, logger)

	weekday, err := cfg.Pipeline.Weekday()
	if err != nil {
		return err
	}

	historyService := services.NewHistoryService(relationalDB, index, cache, relationalDB, logger)
	importService := services.NewImportService(relationalDB, emb, index, relationalDB, logger)

	deps := &internalDeps{
		Deps: Deps{
			Config:            cfg,
			Channel:           channel,
			RunLock:           config.RunLockPathForChannel(cwd, channel),
			Logger:            logger,
			PostHandler:       postHandler,
			QuizHandler:       quizHandler,
			CadenceHandler:    handlers.NewCadenceHandler(postHandler, quizHandler, weekday, logger),
			HistoryHandler:    handlers.NewHistoryHandler(historyService),
			SuggestionHandler: handlers.NewSuggestionHandler(suggestionService),
			ImportHandler:     handlers.NewImportHandler(importService),
		},
		relationalDB: relationalDB,
		metrics:      recorder,
	}

	return fn(deps)
}

// withAuditLog provides direct access to the audit log.
func withAuditLog(fn func(ports.AuditLog) error) error {
	return withInternalDeps(func(d *internalDeps) error {
		return fn(d.relationalDB)
	})
}

func selectorConfig(p config.PipelineConfig) services.SelectorConfig {
	return services.SelectorConfig{
		GenerativeAttempts: p.GenerativeAttempts,
		GenerativeDelay:    p.GenerativeDelay,
		ExclusionWindow:    p.ExclusionWindow,
		CatalogLimit:       p.CatalogLimit,
		Region:             p.Region,
	}
}

func factConfig(p config.PipelineConfig) services.FactConfig {
	return services.FactConfig{
		Attempts:           p.FactAttempts,
		Delay:              p.FactDelay,
		DuplicateThreshold: p.DuplicateThreshold,
	}
}

var errNoChannel = errors.New("no channel configured (run 'feather channels create NAME')")
