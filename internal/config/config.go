package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DocsConfig struct {
	BaseURL       string   `mapstructure:"base_url"`
	Shards        []string `mapstructure:"shards"`
	CacheTTLHours int      `mapstructure:"cache_ttl_hours"`
}

type SearchConfig struct {
	MaxResults    int `mapstructure:"max_results"`
	CompleteLimit int `mapstructure:"complete_limit"`
}

type RefreshConfig struct {
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type Config struct {
	DataDir string        `mapstructure:"data_dir"`
	Docs    DocsConfig    `mapstructure:"docs"`
	Search  SearchConfig  `mapstructure:"search"`
	Refresh RefreshConfig `mapstructure:"refresh"`
}

// CacheTTL returns the shard cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Docs.CacheTTLHours) * time.Hour
}

// DefaultShards lists the "all" category shards Doxygen emits, all_0.js to all_f.js
func DefaultShards() []string {
	shards := make([]string, 0, 16)
	for i := 0; i < 16; i++ {
		shards = append(shards, fmt.Sprintf("all_%x.js", i))
	}
	return shards
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "")
	v.SetDefault("docs.base_url", "https://tgui.eu/documentation/0.7/")
	v.SetDefault("docs.shards", DefaultShards())
	v.SetDefault("docs.cache_ttl_hours", 24)
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.complete_limit", 20)
	v.SetDefault("refresh.concurrency", 4)
	v.SetDefault("refresh.timeout", "30s")
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")

	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "tguidoc"))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "tguidoc"))
	}

	setDefaults(v)

	v.SetEnvPrefix("TGUIDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// Load reads config.toml and TGUIDOC_* environment overrides on top of the defaults
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// Default returns the built-in configuration, ignoring files and environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	config, err := decode(v)
	if err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return config
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.CompleteLimit < 0 {
		return fmt.Errorf("search.complete_limit must not be negative, got %d", c.Search.CompleteLimit)
	}
	if c.Refresh.Concurrency < 1 {
		c.Refresh.Concurrency = 1
	}
	for i, shard := range c.Docs.Shards {
		c.Docs.Shards[i] = strings.TrimSpace(shard)
		if c.Docs.Shards[i] == "" || strings.ContainsAny(c.Docs.Shards[i], `/\`) {
			return fmt.Errorf("docs.shards[%d]: invalid shard file name %q", i, shard)
		}
	}
	return nil
}
