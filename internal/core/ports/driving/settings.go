package driving

import "github.com/custodia-labs/ppltr/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the effective settings: defaults, then the config file,
	// then PPLTR_* environment overrides.
	Get() (*domain.Settings, error)

	// Set validates and persists one setting by its dotted key.
	Set(key, value string) error

	// Unset removes a persisted setting so its default applies again.
	Unset(key string) error

	// Keys returns the supported dotted keys in display order.
	Keys() []string
}
