package driven

// ConfigStore persists flat, dot-keyed configuration values such as
// "embedding.primary.model". Values keep the type they were stored or decoded
// with; callers convert them.
type ConfigStore interface {
	// Get retrieves a value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Unset removes a key and persists immediately. Removing a missing key
	// is not an error.
	Unset(key string) error

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Load reads configuration from storage, replacing what is held.
	Load() error

	// Path returns the configuration location.
	Path() string
}
