package gen

import (
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/syssam/modelc"
)

// Config holds the compiler and generator configuration.
type Config struct {
	// Target is the output directory of generated code.
	Target string
	// Package is the import path of the generated package.
	Package string
	// Header is written at the top of every generated file.
	Header string
	// Storage selects the backend that declarations compile for. A nil
	// storage accepts every backend specific attribute.
	Storage *Storage
	// Features holds the enabled feature flags.
	Features []Feature
	// Workers bounds the number of files rendered in parallel.
	Workers int
	// Logger receives compilation and generation records.
	Logger *slog.Logger
	// Registry receives registered models. Defaults to modelc.Default().
	Registry *modelc.Registry
}

// OutputConfig groups the output settings of a Config.
type OutputConfig struct {
	Target  string
	Package string
	Header  string
}

// Output returns the output settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{Target: c.Target, Package: c.Package, Header: c.Header}
}

// FeatureEnabled reports if the given feature name is enabled. It fails for
// unknown feature names.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	i := slices.IndexFunc(AllFeatures, func(f Feature) bool { return f.Name == name })
	if i < 0 {
		return false, fmt.Errorf("unexpected feature name %q", name)
	}
	if c == nil {
		return AllFeatures[i].Default, nil
	}
	if slices.ContainsFunc(c.Features, func(f Feature) bool { return f.Name == name }) {
		return true, nil
	}
	return AllFeatures[i].Default, nil
}

// Dialect returns the selected dialect, or "" when no storage is selected.
func (c *Config) Dialect() string {
	if c == nil || c.Storage == nil {
		return ""
	}
	return c.Storage.Name
}

// PackageName returns the name of the generated package.
func (c *Config) PackageName() string {
	switch {
	case c.Package != "":
		return path.Base(c.Package)
	case c.Target != "":
		return filepath.Base(c.Target)
	default:
		return "models"
	}
}

func (c *Config) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Config) registry() *modelc.Registry {
	if c == nil || c.Registry == nil {
		return modelc.Default()
	}
	return c.Registry
}

func (c *Config) workers() int {
	if c == nil || c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

func (c *Config) header() string {
	if c == nil || c.Header == "" {
		return "Code generated by modelc. DO NOT EDIT."
	}
	return c.Header
}
