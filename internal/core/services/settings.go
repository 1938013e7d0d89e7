package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides: corpus.path is PPLTR_CORPUS_PATH.
const EnvPrefix = "PPLTR_"

// setting binds a dotted config key to a settings field.
type setting struct {
	key   string
	apply func(s *domain.Settings, v string) error
}

func stringSetting(key string, field func(*domain.Settings) *string) setting {
	return setting{key: key, apply: func(s *domain.Settings, v string) error {
		*field(s) = v
		return nil
	}}
}

func boolSetting(key string, field func(*domain.Settings) *bool) setting {
	return setting{key: key, apply: func(s *domain.Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*field(s) = b
		return nil
	}}
}

func intSetting(key string, field func(*domain.Settings) *int) setting {
	return setting{key: key, apply: func(s *domain.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*field(s) = n
		return nil
	}}
}

func floatSetting(key string, field func(*domain.Settings) *float64) setting {
	return setting{key: key, apply: func(s *domain.Settings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*field(s) = f
		return nil
	}}
}

func embeddingSettings(prefix string, field func(*domain.Settings) *domain.EmbeddingSettings) []setting {
	return []setting{
		{key: prefix + ".provider", apply: func(s *domain.Settings, v string) error {
			field(s).Provider = domain.EmbeddingProvider(v)
			return nil
		}},
		stringSetting(prefix+".model", func(s *domain.Settings) *string { return &field(s).Model }),
		stringSetting(prefix+".repo", func(s *domain.Settings) *string { return &field(s).Repo }),
		stringSetting(prefix+".base_url", func(s *domain.Settings) *string { return &field(s).BaseURL }),
		stringSetting(prefix+".api_key", func(s *domain.Settings) *string { return &field(s).APIKey }),
		intSetting(prefix+".dimensions", func(s *domain.Settings) *int { return &field(s).Dimensions }),
		floatSetting(prefix+".requests_per_second", func(s *domain.Settings) *float64 {
			return &field(s).RequestsPerSecond
		}),
	}
}

var settingsTable = func() []setting {
	table := []setting{
		stringSetting("corpus.path", func(s *domain.Settings) *string { return &s.Corpus.Path }),
		boolSetting("corpus.strip_markdown", func(s *domain.Settings) *bool { return &s.Corpus.StripMarkdown }),
		stringSetting("cache.driver", func(s *domain.Settings) *string { return &s.Cache.Driver }),
		stringSetting("cache.dir", func(s *domain.Settings) *string { return &s.Cache.Dir }),
		floatSetting("bm25.b", func(s *domain.Settings) *float64 { return &s.BM25.B }),
		floatSetting("bm25.k1", func(s *domain.Settings) *float64 { return &s.BM25.K1 }),
	}
	table = append(table, embeddingSettings("embedding.primary",
		func(s *domain.Settings) *domain.EmbeddingSettings { return &s.Primary })...)
	table = append(table, embeddingSettings("embedding.secondary",
		func(s *domain.Settings) *domain.EmbeddingSettings { return &s.Secondary })...)
	table = append(table,
		stringSetting("ranker.java", func(s *domain.Settings) *string { return &s.Ranker.Java }),
		stringSetting("ranker.jar", func(s *domain.Settings) *string { return &s.Ranker.Jar }),
		stringSetting("ranker.model", func(s *domain.Settings) *string { return &s.Ranker.Model }),
		stringSetting("ranker.work_dir", func(s *domain.Settings) *string { return &s.Ranker.WorkDir }),
		intSetting("recommend.top_k", func(s *domain.Settings) *int { return &s.Ranker.TopK }),
	)
	return table
}()

// SettingsService reads settings from the config store and environment.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
		validate:    validator.New(),
	}
}

// SetEnvFunc replaces the environment lookup (tests).
func (s *SettingsService) SetEnvFunc(getenv func(string) string) {
	s.getenv = getenv
}

// Keys returns the supported dotted keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingsTable))
	for i, st := range settingsTable {
		keys[i] = st.key
	}
	return keys
}

// Get returns the effective settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := &domain.Settings{}
	if err := defaults.Set(settings); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	for _, key := range s.configStore.Keys() {
		if !knownSetting(key) {
			logger.Warn("Ignoring unknown config key %q in %s", key, s.configStore.Path())
		}
	}

	for _, st := range settingsTable {
		if v, ok := s.configStore.Get(st.key); ok {
			if err := st.apply(settings, fmt.Sprint(v)); err != nil {
				return nil, fmt.Errorf("%w: config %v", domain.ErrInvalidInput, err)
			}
		}
		if v := s.getenv(envName(st.key)); v != "" {
			if err := st.apply(settings, v); err != nil {
				return nil, fmt.Errorf("%w: env %v", domain.ErrInvalidInput, err)
			}
		}
	}

	for _, space := range domain.AllSpaces() {
		fillEmbeddingDefaults(settings, space, s.getenv)
	}

	if err := s.validate.Struct(settings); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return settings, nil
}

// Set validates and persists one setting.
func (s *SettingsService) Set(key, value string) error {
	for _, st := range settingsTable {
		if st.key != key {
			continue
		}
		candidate := &domain.Settings{}
		if err := defaults.Set(candidate); err != nil {
			return fmt.Errorf("apply defaults: %w", err)
		}
		if err := st.apply(candidate, value); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if err := s.validate.Struct(candidate); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

// Unset removes a stored setting so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if !knownSetting(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	return nil
}

func knownSetting(key string) bool {
	for _, st := range settingsTable {
		if st.key == key {
			return true
		}
	}
	return false
}

// fillEmbeddingDefaults fills model, repo, dimensions and API key when unset.
func fillEmbeddingDefaults(settings *domain.Settings, space domain.EmbeddingSpace, getenv func(string) string) {
	e := settings.Embedding(space)
	if e.Model == "" {
		e.Model = domain.DefaultEmbeddingModels()[space]
	}
	if e.Repo == "" && e.Provider == domain.EmbeddingProviderONNX {
		e.Repo = domain.DefaultEmbeddingRepos()[space]
	}
	if e.Dimensions == 0 {
		e.Dimensions = domain.EmbeddingDimensions()[e.Model]
	}
	if e.APIKey == "" && e.Provider.RequiresAPIKey() {
		e.APIKey = getenv("OPENAI_API_KEY")
	}
	if space == domain.SpaceTechnical {
		settings.Secondary = e
	} else {
		settings.Primary = e
	}
}

func envName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
