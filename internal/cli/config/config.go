// Package config loads the configuration of the modelc command.
//
// Values are merged with the precedence flags > environment (MODELC_ prefix)
// > config file (modelc.yaml) > defaults.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
)

// Defaults.
const (
	DefaultModels   = "models"
	DefaultTarget   = "modelc"
	DefaultSnapshot = ".modelc/snapshot.msgpack"
	DefaultDebounce = 200 * time.Millisecond
	EnvPrefix       = "MODELC_"
)

// FileNames are the config files looked up in the working directory.
var FileNames = []string{"modelc.yaml", "modelc.yml"}

// Config is the configuration of the modelc command.
type Config struct {
	// Models is the declaration file or directory.
	Models string `koanf:"models"`
	// Target is the output directory of generated code.
	Target   string   `koanf:"target"`
	Package  string   `koanf:"package"`
	Header   string   `koanf:"header"`
	Storage  string   `koanf:"storage"`
	Workers  int      `koanf:"workers"`
	Features []string `koanf:"features"`
	// Snapshot is the path of the msgpack registry snapshot.
	Snapshot string      `koanf:"snapshot"`
	Log      LogConfig   `koanf:"log"`
	Watch    WatchConfig `koanf:"watch"`

	// File is the config file the values were read from, if any.
	File string `koanf:"-"`
}

// LogConfig configures the slog handler of the command.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// WatchConfig configures generate --watch.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// findFile returns the config file to read: the explicit path, or the first
// of FileNames present in the working directory.
func findFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads the configuration. Only flags changed on the command line
// override other sources; "log-level" sets "log.level".
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{
		"models":         DefaultModels,
		"target":         DefaultTarget,
		"snapshot":       DefaultSnapshot,
		"log.level":      "info",
		"log.format":     "text",
		"watch.debounce": DefaultDebounce.String(),
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// MODELC_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports invalid values.
func (c *Config) Validate() error {
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: use text or json", c.Log.Format)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must not be negative", c.Workers)
	}
	if c.Watch.Debounce <= 0 {
		return fmt.Errorf("invalid watch debounce %s: must be positive", c.Watch.Debounce)
	}
	return nil
}

func (c LogConfig) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return l, nil
}

// Logger returns a logger writing to w in the configured format.
func (c LogConfig) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// GenOptions returns the compiler options of the configuration. Models are
// registered in r.
func (c *Config) GenOptions(logger *slog.Logger, r *modelc.Registry) []gen.Option {
	opts := []gen.Option{gen.WithLogger(logger), gen.WithRegistry(r)}
	if c.Target != "" {
		opts = append(opts, gen.WithTarget(c.Target))
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.Header != "" {
		opts = append(opts, gen.WithHeader(c.Header))
	}
	if c.Storage != "" {
		opts = append(opts, gen.WithDialect(c.Storage))
	}
	if c.Workers > 0 {
		opts = append(opts, gen.WithWorkers(c.Workers))
	}
	if len(c.Features) > 0 {
		opts = append(opts, gen.WithFeatureNames(c.Features...))
	}
	return opts
}
