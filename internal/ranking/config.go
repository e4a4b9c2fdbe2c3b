package ranking

import "time"

// Config holds the configuration for a ranking pass.
// It is loaded from the "ranking" section of the service config.
type Config struct {
	// Fan-out limits
	MaxConcurrentResolutionsPerProduct int `mapstructure:"max_concurrent_resolutions_per_product"`
	MaxConcurrentResolutions           int `mapstructure:"max_concurrent_resolutions"`
	MaxConcurrentProducts              int `mapstructure:"max_concurrent_products"`

	// Upper bound on a single routing call; a timeout falls back to the sentinel estimate.
	ResolveTimeout time.Duration `mapstructure:"resolve_timeout"`

	// Scoring caps for the single-offer regime
	MinMaxReasonableDistance     float64 `mapstructure:"min_max_reasonable_distance"`
	DefaultMaxReasonableDistance float64 `mapstructure:"default_max_reasonable_distance"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		MaxConcurrentResolutionsPerProduct: 8,
		MaxConcurrentResolutions:           64,
		MaxConcurrentProducts:              16,
		ResolveTimeout:                     5 * time.Second,
		MinMaxReasonableDistance:           2,
		DefaultMaxReasonableDistance:       20,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.MaxConcurrentResolutionsPerProduct < 1 {
		return ErrInvalidConfig{Field: "max_concurrent_resolutions_per_product", Reason: "must be at least 1"}
	}
	if c.MaxConcurrentResolutions < c.MaxConcurrentResolutionsPerProduct {
		return ErrInvalidConfig{Field: "max_concurrent_resolutions", Reason: "must be >= max_concurrent_resolutions_per_product"}
	}
	if c.MaxConcurrentProducts < 1 {
		return ErrInvalidConfig{Field: "max_concurrent_products", Reason: "must be at least 1"}
	}
	if c.ResolveTimeout <= 0 {
		return ErrInvalidConfig{Field: "resolve_timeout", Reason: "must be positive"}
	}
	if c.MinMaxReasonableDistance <= 0 {
		return ErrInvalidConfig{Field: "min_max_reasonable_distance", Reason: "must be positive"}
	}
	if c.DefaultMaxReasonableDistance <= 0 {
		return ErrInvalidConfig{Field: "default_max_reasonable_distance", Reason: "must be positive"}
	}
	return nil
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
