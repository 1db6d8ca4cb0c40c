// Package expectconf consolidates the library-wide defaults of the
// expect module from explicit values and environment variables.
package expectconf

import (
	"encoding/json"
	"time"

	"github.com/mstoykov/envconfig"
	"gopkg.in/guregu/null.v3"
)

// Config holds the library-wide assertion defaults.
//
//nolint:lll
type Config struct {
	// DefaultTimeout is the per-assertion deadline applied when a call
	// has no explicit timeout option.
	DefaultTimeout NullDuration `json:"defaultTimeout" envconfig:"EXPECT_DEFAULT_TIMEOUT"`

	// Debug enables the category debug log of the retry loops.
	Debug null.Bool `json:"debug" envconfig:"EXPECT_DEBUG"`

	// LogCategoryFilter restricts debug output to the categories
	// matching the given regex, e.g. "Assertions:ToHave.*".
	LogCategoryFilter null.String `json:"logCategoryFilter" envconfig:"EXPECT_LOG_CATEGORY_FILTER"`
}

// NewConfig creates a new Config instance with default values for some fields.
func NewConfig() Config {
	return Config{
		DefaultTimeout: NewNullDuration(30*time.Second, false),
	}
}

// Apply overlays the valid fields of cfg onto c and returns the result.
func (c Config) Apply(cfg Config) Config {
	if cfg.DefaultTimeout.Valid {
		c.DefaultTimeout = cfg.DefaultTimeout
	}
	if cfg.Debug.Valid {
		c.Debug = cfg.Debug
	}
	if cfg.LogCategoryFilter.Valid && cfg.LogCategoryFilter.String != "" {
		c.LogCategoryFilter = cfg.LogCategoryFilter
	}
	return c
}

// GetConsolidatedConfig combines the default config values with the JSON
// config values and environment variables and returns the final result.
func GetConsolidatedConfig(jsonRawConf json.RawMessage, env map[string]string) (Config, error) {
	result := NewConfig()

	if jsonRawConf != nil {
		jsonConf := Config{}
		if err := json.Unmarshal(jsonRawConf, &jsonConf); err != nil {
			return result, err
		}
		result = result.Apply(jsonConf)
	}

	envConfig := Config{}
	if err := envconfig.Process("", &envConfig, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		return result, err
	}
	result = result.Apply(envConfig)

	return result, nil
}
