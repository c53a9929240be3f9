// Package config loads the server and CLI settings from a YAML file, .env files and
// SIMMAP_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"github.com/JensKlimke/SimMap-sub000/pkg/roadmap"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "SIMMAP_"

type Log struct {
	Level   string `yaml:"level"`
	JSON    bool   `yaml:"json"`
	Concise bool   `yaml:"concise"`
}

type Config struct {
	Listen string `yaml:"listen"`
	// StorePath is the pebble directory of the map store, empty disables the store.
	StorePath string `yaml:"storePath"`
	MapDir    string `yaml:"mapDir"`
	// Preload lists map files (relative to MapDir) or stored map names loaded on start.
	Preload  []string `yaml:"preload"`
	Workers  int      `yaml:"workers"`
	Step     float64  `yaml:"step"`
	Profiler bool     `yaml:"profiler"`
	Log      Log      `yaml:"log"`
}

func Default() *Config {
	return &Config{
		Listen:  ":5000",
		MapDir:  ".",
		Workers: runtime.NumCPU(),
		Step:    roadmap.DefaultStep,
		Log:     Log{Level: "info", Concise: true},
	}
}

// LoadDotEnv loads the .env files into the process environment. Missing files are skipped,
// variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return domain.WrapErrorf(err, domain.ErrInvalidArgument, "cannot load env file %s", f)
		}
	}
	return nil
}

// Load reads the YAML file at path on top of the defaults and applies the environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.WrapErrorf(err, domain.ErrNotFound, "cannot read config %s", path)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "cannot parse config %s", path)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	var err error
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && err == nil {
			if *dst, err = strconv.ParseBool(v); err != nil {
				err = domain.WrapErrorf(err, domain.ErrInvalidArgument, "%s%s must be a boolean", EnvPrefix, key)
			}
		}
	}

	str("LISTEN", &c.Listen)
	str("STORE", &c.StorePath)
	str("MAP_DIR", &c.MapDir)
	str("LOG_LEVEL", &c.Log.Level)
	boolean("LOG_JSON", &c.Log.JSON)
	boolean("LOG_CONCISE", &c.Log.Concise)
	boolean("PROFILER", &c.Profiler)
	if err != nil {
		return err
	}

	if v, ok := lookup(EnvPrefix + "PRELOAD"); ok {
		c.Preload = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Preload = append(c.Preload, name)
			}
		}
	}
	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.WrapErrorf(err, domain.ErrInvalidArgument, "%sWORKERS must be an integer", EnvPrefix)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "STEP"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return domain.WrapErrorf(err, domain.ErrInvalidArgument, "%sSTEP must be a number", EnvPrefix)
		}
		c.Step = f
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "workers must be at least 1, got %d", c.Workers)
	}
	if !(c.Step > 0) {
		return domain.WrapErrorf(nil, domain.ErrInvalidArgument, "step must be positive, got %g", c.Step)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, domain.WrapErrorf(err, domain.ErrInvalidArgument, "invalid log level %q", c.Log.Level)
	}
	return l, nil
}

// BuildOptions returns the map build options for the configured workers and step.
func (c *Config) BuildOptions() []roadmap.Option {
	return []roadmap.Option{roadmap.WithWorkers(c.Workers), roadmap.WithStep(c.Step)}
}
