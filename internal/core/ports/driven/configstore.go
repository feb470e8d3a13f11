package driven

// ConfigStore holds the user's settings as flat dot-notation keys
// such as "pipeline.max_context_chars" or "dropbox.root".
// Typed getters return the zero value when the key is missing or holds
// another type, so callers apply their own defaults.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetStringSlice accepts both []string and decoded TOML arrays.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save writes every stored value back to disk.
	Save() error
}
