package sql

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/modelc/compiler/gen"
)

// Generate is a convenience function to generate the package of a compiled
// graph into the configured target directory.
//
// Example:
//
//	import "github.com/syssam/modelc/compiler/gen/sql"
//	err := sql.Generate(ctx, graph)
func Generate(ctx context.Context, g *gen.Graph) error {
	if g.Config == nil || g.Target == "" {
		return gen.NewConfigError("target", nil, "no target directory in config")
	}
	generator := gen.NewJenniferGenerator(g, g.Target)
	generator.WithDialect(NewDialect(generator))
	return generator.Generate(ctx)
}

// Dialect implements gen.DialectGenerator.
type Dialect struct {
	helper gen.GeneratorHelper
}

// NewDialect creates a new dialect generator.
// The helper parameter should be a *gen.JenniferGenerator.
func NewDialect(helper gen.GeneratorHelper) *Dialect {
	return &Dialect{helper: helper}
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return "sql"
}

// GenModel generates the model file ({model}.go).
func (d *Dialect) GenModel(m *gen.Model) *jen.File {
	return genModel(d.helper, m)
}

// GenPackage generates the package file (modelc.go).
func (d *Dialect) GenPackage() *jen.File {
	return genPackage(d.helper)
}

// SupportsFeature reports if the feature is supported by the dialect.
func (d *Dialect) SupportsFeature(feature string) bool {
	switch feature {
	case gen.FeatureRegister.Name, gen.FeatureValidator.Name, gen.FeatureSnapshot.Name:
		return true
	default:
		return false
	}
}

// GenFeature generates the file of a feature. Features rendered inside the
// model files have none.
func (d *Dialect) GenFeature(feature string) *jen.File {
	switch feature {
	case gen.FeatureSnapshot.Name:
		return genSnapshot(d.helper)
	default:
		return nil
	}
}

// Verify Dialect implements gen.DialectGenerator at compile time.
var _ gen.DialectGenerator = (*Dialect)(nil)
