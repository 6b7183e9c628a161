// Package config loads the optional organigram configuration file.
//
// The file is TOML and every key is optional. Command-line flags override
// values read from it.
//
//	source = "mysql://org:secret@db:3306/armee"
//	title  = "Organigramme"
//	output = "charts/armee.svg"
//	formats = ["svg", "json"]
//	max_label = 28
//
//	[schema]
//	table = "units"
//	parent_column = "parent_id"
//
//	[cache]
//	dir = "/var/cache/organigram"
//	redis_addr = "localhost:6379"
//	ttl = "10m"
//
//	[serve]
//	addr = ":8080"
//
// Without --config the file is looked up at
// $XDG_CONFIG_HOME/organigram/config.toml (or ~/.config/organigram/config.toml);
// a missing file there is not an error.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/pipeline"
	"github.com/matzehuels/organigram/pkg/source/sqlsource"
)

const (
	appName  = "organigram"
	fileName = "config.toml"

	// DefaultServeAddr is the listen address of the chart server.
	DefaultServeAddr = "localhost:8080"
)

// Config is the decoded configuration file.
type Config struct {
	Source     string           `toml:"source"`
	Title      string           `toml:"title"`
	Output     string           `toml:"output"`
	Formats    []string         `toml:"formats"`
	MaxLabel   int              `toml:"max_label"`
	LevelLabel string           `toml:"level_label"`
	Schema     sqlsource.Schema `toml:"schema"`

	// FetchTimeout bounds each fetch from the source, e.g. "30s".
	FetchTimeout time.Duration `toml:"fetch_timeout"`

	Cache Cache `toml:"cache"`
	Serve Serve `toml:"serve"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// Cache configures where fetched records are kept between runs.
type Cache struct {
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"ttl"`
	Disabled      bool          `toml:"disabled"`
}

// Serve configures the chart server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Schema: sqlsource.DefaultSchema(),
		Serve:  Serve{Addr: DefaultServeAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/organigram/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the configuration at path. An empty path means [DefaultPath],
// in which case a missing file yields [Default] instead of an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !explicit {
				return Default(), nil
			}
			return Config{}, errs.Wrap(errs.ErrCodeNotFound, err, "config file %s", path)
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML text over [Default] and validates the result.
// Unknown keys are rejected so typos do not pass silently.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}

	cfg.Schema = cfg.Schema.WithDefaults()
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultServeAddr
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks formats, label width, timeouts and schema identifiers.
func (c Config) Validate() error {
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return err
	}
	if c.MaxLabel < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "max_label must not be negative, got %d", c.MaxLabel)
	}
	if c.FetchTimeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "fetch_timeout must not be negative, got %s", c.FetchTimeout)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return c.Schema.Validate()
}

// PipelineOptions converts the file's chart settings into run options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Title:        c.Title,
		Formats:      append([]string(nil), c.Formats...),
		Output:       c.Output,
		MaxLabel:     c.MaxLabel,
		LevelLabel:   c.LevelLabel,
		FetchTimeout: c.FetchTimeout,
	}
}
