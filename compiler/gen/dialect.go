package gen

import "github.com/dave/jennifer/jen"

// =============================================================================
// Generator interfaces implemented by dialect packages
// =============================================================================

// ModelGenerator generates per-model code.
// Each method is called once per model of the graph.
type ModelGenerator interface {
	// GenModel generates the model file ({model}.go): struct, constructor,
	// accessors, primary key, field selector and metadata.
	GenModel(m *Model) *jen.File
}

// PackageGenerator generates package-level code.
// Each method is called once per generation run.
type PackageGenerator interface {
	// GenPackage generates the package file (modelc.go).
	GenPackage() *jen.File
}

// FeatureGenerator generates feature-specific files.
type FeatureGenerator interface {
	// SupportsFeature checks if the dialect supports a feature.
	SupportsFeature(feature string) bool
	// GenFeature generates the file of a feature.
	GenFeature(feature string) *jen.File
}

// MinimalDialect is the minimum interface a dialect must implement.
type MinimalDialect interface {
	ModelGenerator
	PackageGenerator
}

// DialectGenerator is a dialect implementing every generator interface.
type DialectGenerator interface {
	MinimalDialect
	FeatureGenerator
}

// GeneratorHelper provides helper methods for dialect implementations.
// JenniferGenerator implements this interface, allowing dialect packages
// to use helper methods without importing the full generator.
type GeneratorHelper interface {
	// NewFile creates a new Jennifer file with the configured header comment.
	NewFile(pkg string) *jen.File

	// GoType returns the Jennifer code for a field's Go type, including the
	// optional pointer.
	GoType(f *Field) jen.Code

	// BaseType returns the Jennifer code for a field's base type (without pointer).
	BaseType(f *Field) jen.Code

	// KeyType returns the Jennifer code for the primary key type of a model.
	KeyType(m *Model) jen.Code

	// ModelcPkg returns the import path of the modelc runtime package.
	ModelcPkg() string

	// Graph returns the compiled graph.
	Graph() *Graph

	// Pkg returns the output package name.
	Pkg() string

	// FeatureEnabled reports if the given feature name is enabled.
	FeatureEnabled(name string) bool
}
