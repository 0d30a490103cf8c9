// Package config loads the bookreport settings from flags, environment
// variables prefixed with BOOKQUERY_ and an optional config file, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read. The variable for a
// key is the key upper-cased with dashes replaced, so mongo-uri is read from
// BOOKQUERY_MONGO_URI.
const EnvPrefix = "BOOKQUERY"

// Backends.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Keys.
const (
	KeyConfig      = "config"
	KeyBackend     = "backend"
	KeyMongoURI    = "mongo-uri"
	KeyDatabase    = "database"
	KeyCollection  = "collection"
	KeySeed        = "seed"
	KeyTimeout     = "timeout"
	KeyAllowWrites = "allow-writes"
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
)

// ErrInvalid is returned by [Load] when a setting has an unusable value.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting of the bookreport command.
type Config struct {
	Backend     string        `mapstructure:"backend"`
	MongoURI    string        `mapstructure:"mongo-uri"`
	Database    string        `mapstructure:"database"`
	Collection  string        `mapstructure:"collection"`
	Seed        string        `mapstructure:"seed"`
	Timeout     time.Duration `mapstructure:"timeout"`
	AllowWrites bool          `mapstructure:"allow-writes"`
	LogLevel    string        `mapstructure:"log-level"`
	LogFormat   string        `mapstructure:"log-format"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Backend:    BackendMemory,
		MongoURI:   "mongodb://localhost:27017",
		Database:   "plp_bookstore",
		Collection: "books",
		Timeout:    30 * time.Second,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// New returns a viper instance reading BOOKQUERY_ variables, with the
// defaults set.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	def := Default()
	v.SetDefault(KeyBackend, def.Backend)
	v.SetDefault(KeyMongoURI, def.MongoURI)
	v.SetDefault(KeyDatabase, def.Database)
	v.SetDefault(KeyCollection, def.Collection)
	v.SetDefault(KeySeed, def.Seed)
	v.SetDefault(KeyTimeout, def.Timeout)
	v.SetDefault(KeyAllowWrites, def.AllowWrites)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	return v
}

// BindFlags declares the persistent flags of cmd and binds them to v, so a
// flag set on the command line wins over the environment.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	def := Default()
	fs := cmd.PersistentFlags()
	fs.String(KeyConfig, "", "config file (yaml, json or toml)")
	fs.String(KeyBackend, def.Backend, "store backend: memory or mongo")
	fs.String(KeyMongoURI, def.MongoURI, "mongo connection string")
	fs.String(KeyDatabase, def.Database, "database name")
	fs.String(KeyCollection, def.Collection, "collection name")
	fs.String(KeySeed, def.Seed, "JSON file with the books to seed, instead of the sample")
	fs.Duration(KeyTimeout, def.Timeout, "timeout for the whole run")
	fs.Bool(KeyAllowWrites, def.AllowWrites, "run reports that modify documents")
	fs.String(KeyLogLevel, def.LogLevel, "log level: debug, info, warn or error")
	fs.String(KeyLogFormat, def.LogFormat, "log format: text or json")

	for _, key := range []string{
		KeyConfig, KeyBackend, KeyMongoURI, KeyDatabase, KeyCollection,
		KeySeed, KeyTimeout, KeyAllowWrites, KeyLogLevel, KeyLogFormat,
	} {
		if err := v.BindPFlag(key, fs.Lookup(key)); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the config file named by the config key, if any, and returns
// the validated settings.
func Load(v *viper.Viper) (Config, error) {
	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.Backend = strings.ToLower(cfg.Backend)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	return cfg, cfg.Validate()
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("%w: %s is required by the mongo backend", ErrInvalid, KeyMongoURI)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if c.Database == "" || c.Collection == "" {
		return fmt.Errorf("%w: database and collection must not be empty", ErrInvalid)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, KeyTimeout)
	}
	return nil
}
