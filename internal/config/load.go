package config

import (
	"os"
	"strings"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/internal/logger"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. FACTSTORE_STORAGE_PATH
const EnvPrefix = "FACTSTORE"

// DefaultFile is looked up in the working directory when no file is given
const DefaultFile = "factstore.toml"

// Load reads configuration from defaults, an optional TOML file and
// environment variables, in increasing precedence. An empty path falls
// back to DefaultFile when it exists.
func Load(path string) (*Config, error) {
	v := newViper()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		logger.Logger.Debugw("config file loaded", "path", path)
	}

	return unmarshal(v)
}

// LoadFromFile loads configuration from a specific file without
// environment overrides
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that have no usable fallback
func (c *Config) Validate() error {
	if !c.Storage.InMemory && strings.TrimSpace(c.Storage.Path) == "" {
		return errors.WithHint(
			errors.New("storage.path is required when storage.in_memory is false"),
			"set storage.path or FACTSTORE_STORAGE_PATH")
	}
	if c.Storage.MemTableSize < 0 {
		return errors.Newf("storage.mem_table_size must not be negative, got %d", c.Storage.MemTableSize)
	}
	if c.Transform.MaxIterations <= 0 {
		return errors.Newf("transform.max_iterations must be positive, got %d", c.Transform.MaxIterations)
	}
	if c.Results.Indent < 0 {
		return errors.Newf("results.indent must not be negative, got %d", c.Results.Indent)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
