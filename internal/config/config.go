// Package config resolves runtime settings from defaults, a YAML file,
// the environment and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/frankie567/openapi-tools/internal/nav"
	"github.com/frankie567/openapi-tools/internal/openapi"
)

const (
	EnvConfig        = "OPENAPI_TOOLS_CONFIG"
	EnvSpec          = "OPENAPI_TOOLS_SPEC"
	EnvSpecFile      = "OPENAPI_TOOLS_SPEC_FILE"
	EnvSpecURL       = "OPENAPI_TOOLS_SPEC_URL"
	EnvTimeout       = "OPENAPI_TOOLS_TIMEOUT"
	EnvMaxCycleDepth = "OPENAPI_TOOLS_MAX_CYCLE_DEPTH"
	EnvReset         = "OPENAPI_TOOLS_RESET"
	EnvDebug         = "OPENAPI_TOOLS_DEBUG"
	EnvLog           = "OPENAPI_TOOLS_LOG"

	MaxCycleDepthLimit = 1024
)

type Config struct {
	// Spec is the document location: a path, "@path", or a URL.
	Spec          string          `yaml:"spec"`
	Timeout       time.Duration   `yaml:"timeout"`
	MaxCycleDepth int             `yaml:"max_cycle_depth"`
	Reset         nav.ResetPolicy `yaml:"reset"`
	Debug         bool            `yaml:"debug"`
	LogFile       string          `yaml:"log_file"`
}

func Default() Config {
	return Config{
		Timeout:       openapi.DefaultTimeout,
		MaxCycleDepth: openapi.DefaultMaxCycleDepth,
		Reset:         nav.ResetActiveMode,
		LogFile:       filepath.Join(os.TempDir(), "openapi-tools.log"),
	}
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxCycleDepth < 1 || c.MaxCycleDepth > MaxCycleDepthLimit {
		return fmt.Errorf("max cycle depth must be between 1 and %d, got %d", MaxCycleDepthLimit, c.MaxCycleDepth)
	}
	if _, err := nav.ParseResetPolicy(string(c.Reset)); err != nil {
		return err
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadFile merges the YAML file at path over c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv merges environment settings over c. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }

	switch {
	case get(EnvSpec) != "":
		c.Spec = get(EnvSpec)
	case get(EnvSpecFile) != "":
		c.Spec = "@" + get(EnvSpecFile)
	case get(EnvSpecURL) != "":
		c.Spec = get(EnvSpecURL)
	}
	if v := get(EnvTimeout); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := get(EnvMaxCycleDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxCycleDepth, err)
		}
		c.MaxCycleDepth = n
	}
	if v := get(EnvReset); v != "" {
		c.Reset = nav.ResetPolicy(v)
	}
	if v := get(EnvDebug); v != "" {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := get(EnvLog); v != "" {
		c.LogFile = v
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Flags are the command-line settings shared by the subcommands.
type Flags struct {
	fs *flag.FlagSet

	Config        string
	spec          string
	specFile      string
	specURL       string
	timeout       time.Duration
	maxCycleDepth int
	reset         string
	debug         bool
	logFile       string
}

// RegisterFlags adds the shared flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "path to a YAML config file")
	fs.StringVar(&f.spec, "spec", "", "OpenAPI document (path, @path or URL)")
	fs.StringVar(&f.specFile, "spec-file", "", "path to a local OpenAPI document")
	fs.StringVar(&f.specURL, "spec-url", "", "URL of an OpenAPI document")
	fs.DurationVar(&f.timeout, "timeout", 0, "fetch timeout")
	fs.IntVar(&f.maxCycleDepth, "max-cycle-depth", 0, "longest reference cycle to detect")
	fs.StringVar(&f.reset, "reset", "", `where to go when a reload removes every open frame ("active" or "endpoints")`)
	fs.BoolVar(&f.debug, "debug", false, "write debug logs to the log file")
	fs.StringVar(&f.logFile, "log", "", "debug log file")
	return f
}

// apply merges the flags that were set explicitly over c.
func (f *Flags) apply(c *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "spec":
			c.Spec = f.spec
		case "spec-file":
			c.Spec = "@" + f.specFile
		case "spec-url":
			c.Spec = f.specURL
		case "timeout":
			c.Timeout = f.timeout
		case "max-cycle-depth":
			c.MaxCycleDepth = f.maxCycleDepth
		case "reset":
			c.Reset = nav.ResetPolicy(f.reset)
		case "debug":
			c.Debug = f.debug
		case "log":
			c.LogFile = f.logFile
		}
	})
}

// Resolve builds the effective config once flags have been parsed. source
// is the positional document argument, if any; it wins over every other
// way of naming the document.
func Resolve(f *Flags, source string, getenv func(string) string) (Config, error) {
	cfg := Default()
	path := f.Config
	if path == "" {
		path = strings.TrimSpace(getenv(EnvConfig))
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return Config{}, err
	}
	f.apply(&cfg)
	if source != "" {
		cfg.Spec = source
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
