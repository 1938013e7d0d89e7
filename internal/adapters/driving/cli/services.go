package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/ppltr/internal/adapters/driven/ai"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/corpus/jsonfile"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/ranker/ranklib"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
	"github.com/custodia-labs/ppltr/internal/core/services"
	"github.com/custodia-labs/ppltr/internal/logger"
	"github.com/custodia-labs/ppltr/internal/normalisers"
)

// Services used by commands. Each is created on first use; tests replace
// them with mocks.
var (
	settingsService    driving.SettingsService
	requirementService driving.RequirementService
	featureService     driving.FeatureService
	patternService     driving.PatternService
	recommendService   driving.RecommendService
	cacheService       driving.CacheService
)

// runtime holds the concrete adapters behind the engine-backed services.
type runtime struct {
	settings *domain.Settings
	source   *jsonfile.Source
	encoders *ai.InitResult
	cache    driven.EmbeddingCache
	features *services.FeatureService
}

var (
	rt      runtime
	closers []func() error
)

func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("Close: %v", err)
		}
	}
	closers = nil
	rt = runtime{}
}

func initSettings() error {
	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

func initRequirements() {
	if requirementService == nil {
		requirementService = services.NewRequirementService()
	}
}

func loadSettings() (*domain.Settings, error) {
	if rt.settings != nil {
		return rt.settings, nil
	}
	if err := initSettings(); err != nil {
		return nil, err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	rt.settings = settings
	return settings, nil
}

func loadCorpus(ctx context.Context, settings *domain.Settings) (*domain.Corpus, error) {
	if rt.source == nil {
		rt.source = jsonfile.New(settings.Corpus.Path)
	}
	return services.LoadCorpus(ctx, rt.source, corpusOptions(settings))
}

func corpusOptions(settings *domain.Settings) services.CorpusOptions {
	var opts services.CorpusOptions
	if settings.Corpus.StripMarkdown {
		opts.Normaliser = normalisers.Markup()
	}
	return opts
}

func openCache(settings *domain.Settings) (driven.EmbeddingCache, error) {
	if rt.cache != nil {
		return rt.cache, nil
	}
	var cache driven.EmbeddingCache
	switch settings.Cache.Driver {
	case "memory":
		cache = memory.NewEmbeddingCache()
	case "sqlite", "":
		store, err := sqlite.NewStore(settings.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("opening embedding cache: %w", err)
		}
		cache = store
	default:
		return nil, fmt.Errorf("%w: cache driver %q", domain.ErrUnsupportedType, settings.Cache.Driver)
	}
	rt.cache = cache
	closers = append(closers, cache.Close)
	return cache, nil
}

func openEncoders(ctx context.Context, settings *domain.Settings) (services.Encoders, error) {
	if rt.encoders == nil {
		result, err := ai.CreateEncoders(ctx, settings, ai.Options{ModelDir: modelDir()})
		if err != nil {
			return services.Encoders{}, err
		}
		rt.encoders = result
		closers = append(closers, func() error { result.Close(); return nil })
	}
	return services.Encoders{General: rt.encoders.General, Technical: rt.encoders.Technical}, nil
}

func modelDir() string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "models")
}

// buildEngine loads the corpus and builds the feature engine over it.
func buildEngine(ctx context.Context, settings *domain.Settings) (*services.Engine, error) {
	corpus, err := loadCorpus(ctx, settings)
	if err != nil {
		return nil, err
	}
	encoders, err := openEncoders(ctx, settings)
	if err != nil {
		return nil, err
	}
	cache, err := openCache(settings)
	if err != nil {
		return nil, err
	}
	cfg := services.DefaultEngineConfig(encoders, cache)
	cfg.B = settings.BM25.B
	cfg.K1 = settings.BM25.K1
	return services.NewEngine(ctx, corpus, cfg)
}

// initEngine creates the feature, pattern, recommend and cache services.
func initEngine(ctx context.Context) error {
	if featureService != nil {
		return nil
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	engine, err := buildEngine(ctx, settings)
	if err != nil {
		return err
	}

	features := services.NewFeatureService(engine)
	rt.features = features
	featureService = features
	if patternService == nil {
		patternService = services.NewPatternService(features)
	}
	if cacheService == nil {
		cacheService = services.NewCacheService(features, encodersOf(), rt.cache)
	}
	if recommendService == nil {
		recommendService = newRecommendService(features, settings)
	}
	return nil
}

func encodersOf() services.Encoders {
	if rt.encoders == nil {
		return services.Encoders{}
	}
	return services.Encoders{General: rt.encoders.General, Technical: rt.encoders.Technical}
}

func newRecommendService(features *services.FeatureService, settings *domain.Settings) *services.RecommendService {
	var ranker driven.Ranker
	r, err := ranklib.New(ranklib.Config{
		Java:  settings.Ranker.Java,
		Jar:   settings.Ranker.Jar,
		Model: settings.Ranker.Model,
	})
	if err != nil {
		logger.Warn("Ranker disabled: %v", err)
	} else {
		ranker = r
	}
	svc := services.NewRecommendService(features, ranker, settings.Ranker.WorkDir)
	svc.KeepFiles = keepFiles
	return svc
}

// initPatterns creates the pattern service without building embeddings.
func initPatterns(ctx context.Context) error {
	if patternService != nil {
		return nil
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	corpus, err := loadCorpus(ctx, settings)
	if err != nil {
		return err
	}
	patternService = services.NewPatternService(services.FixedCorpus(corpus))
	return nil
}

// initCache creates the cache service. Encoders are only opened when
// withEncoders is set, since purge and info never embed.
func initCache(ctx context.Context, withEncoders bool) error {
	if cacheService != nil {
		return nil
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	corpus, err := loadCorpus(ctx, settings)
	if err != nil {
		return err
	}
	cache, err := openCache(settings)
	if err != nil {
		return err
	}
	var encoders services.Encoders
	if withEncoders {
		if encoders, err = openEncoders(ctx, settings); err != nil {
			return err
		}
	}
	cacheService = services.NewCacheService(services.FixedCorpus(corpus), encoders, cache)
	return nil
}

// watchCorpus rebuilds the engine whenever the corpus file changes and swaps
// it into the feature service. It blocks until ctx is done.
func watchCorpus(ctx context.Context) error {
	if rt.features == nil || rt.source == nil {
		return errors.New("corpus watching needs a file-backed engine")
	}
	settings := rt.settings
	var mu sync.Mutex
	return rt.source.Watch(ctx, func() {
		mu.Lock()
		defer mu.Unlock()
		logger.Info("Corpus %s changed, rebuilding feature engine", rt.source.Location())
		engine, err := buildEngine(ctx, settings)
		if err != nil {
			logger.Warn("Keeping previous corpus: %v", err)
			return
		}
		rt.features.Swap(engine)
		logger.Info("Serving %d patterns (corpus %s)", engine.Corpus.Len(), engine.Corpus.Fingerprint()[:12])
	})
}
