package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	// FeatureRegister generates an init function registering every model
	// in the process-wide registry.
	FeatureRegister = Feature{
		Name:        "register",
		Stage:       Stable,
		Default:     true,
		Description: "Register generated models and relationships in the model registry at init",
	}

	// FeatureValidator generates a Validate method running the declared
	// validators (length, range, email, url) of every field.
	FeatureValidator = Feature{
		Name:        "validator",
		Stage:       Stable,
		Default:     false,
		Description: "Generates Validate methods for declared field validators",
	}

	// FeatureSnapshot stores the fingerprints of the compiled models in the
	// generated package, so drift against the declarations can be detected.
	FeatureSnapshot = Feature{
		Name:        "schema/snapshot",
		Stage:       Experimental,
		Default:     false,
		Description: "Stores model fingerprints in the generated package to detect declaration drift",
		cleanup: func(c *Config) error {
			return remove(c.Target, "snapshot.go")
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureRegister,
		FeatureValidator,
		FeatureSnapshot,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development.
	Experimental

	// Alpha features are complete but their API may still change.
	Alpha

	// Beta features are documented and no breaking changes are expected.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// A Feature of the modelc codegen.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes the output of previous runs when the feature is disabled.
	cleanup func(*Config) error
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, error) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, nil
		}
	}
	return Feature{}, fmt.Errorf("unknown feature %q", name)
}

// cleanupFeatures removes the output of disabled features.
func cleanupFeatures(c *Config) error {
	for _, f := range AllFeatures {
		if f.cleanup == nil {
			continue
		}
		if enabled, _ := c.FeatureEnabled(f.Name); !enabled {
			if err := f.cleanup(c); err != nil {
				return fmt.Errorf("cleanup %s: %w", f.Name, err)
			}
		}
	}
	return nil
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
