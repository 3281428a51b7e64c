package gen

import (
	"errors"
	"log/slog"

	"github.com/syssam/modelc"
)

// Option configures compilation and code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
// The header is added at the top of each generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithPackage sets the output package import path.
// For example: "github.com/org/project/models".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("package", nil, "empty import path")
		}
		c.Package = pkg
		return nil
	}
}

// WithTarget sets the output directory.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("target", nil, "empty target directory")
		}
		c.Target = dir
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, err := FeatureByName(name)
			if err != nil {
				return NewConfigError("feature", name, err.Error())
			}
			c.Features = append(c.Features, f)
		}
		return nil
	}
}

// WithStorage sets the storage backend.
func WithStorage(storage *Storage) Option {
	return func(c *Config) error {
		c.Storage = storage
		return nil
	}
}

// WithDialect selects the storage backend by dialect name.
// Supported dialects: "postgres", "mysql", "sqlite".
func WithDialect(name string) Option {
	return func(c *Config) error {
		s, err := NewStorage(name)
		if err != nil {
			return NewConfigError("dialect", name, "use postgres, mysql or sqlite")
		}
		c.Storage = s
		return nil
	}
}

// WithWorkers bounds the number of files generated in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("workers", n, "must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("logger", nil, "nil logger")
		}
		c.Logger = l
		return nil
	}
}

// WithRegistry sets the registry that receives registered models.
func WithRegistry(r *modelc.Registry) Option {
	return func(c *Config) error {
		if r == nil {
			return NewConfigError("registry", nil, "nil registry")
		}
		c.Registry = r
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
