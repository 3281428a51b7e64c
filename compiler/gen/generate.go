package gen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
)

// modelcPkg is the import path of the runtime package used by generated code.
const modelcPkg = "github.com/syssam/modelc"

// packageFile is the name of the package-level generated file.
const packageFile = "modelc.go"

// featureFiles maps features to the file they generate.
var featureFiles = map[string]string{
	FeatureSnapshot.Name: "snapshot.go",
}

// JenniferGenerator generates the Go package of a compiled graph with
// Jennifer. Files are rendered in parallel and formatted before they are
// written.
type JenniferGenerator struct {
	graph   *Graph
	workers int
	outDir  string
	pkg     string

	// Dialect generator for the generated code.
	// Requires at least MinimalDialect, but full DialectGenerator is supported.
	dialect MinimalDialect

	// Optional interface implementations detected at runtime
	featureGen FeatureGenerator

	metrics *WriterMetrics
}

// NewJenniferGenerator creates a new Jennifer-based generator.
// You must call WithDialect() to set a dialect before calling Generate().
//
// Example:
//
//	import "github.com/syssam/modelc/compiler/gen/sql"
//
//	gen := gen.NewJenniferGenerator(graph, outDir)
//	gen.WithDialect(sql.NewDialect(gen))
//	gen.Generate(ctx)
func NewJenniferGenerator(g *Graph, outDir string) *JenniferGenerator {
	return &JenniferGenerator{
		graph:   g,
		workers: g.workers(),
		outDir:  outDir,
		pkg:     g.PackageName(),
		metrics: &WriterMetrics{},
	}
}

// WithWorkers sets the number of parallel workers.
func (g *JenniferGenerator) WithWorkers(n int) *JenniferGenerator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// WithPackage sets the output package name.
func (g *JenniferGenerator) WithPackage(pkg string) *JenniferGenerator {
	if pkg != "" {
		g.pkg = pkg
	}
	return g
}

// WithDialect sets the dialect generator.
// Additional capabilities are detected via FeatureGenerator.
func (g *JenniferGenerator) WithDialect(d MinimalDialect) *JenniferGenerator {
	if d != nil {
		g.dialect = d
		if fg, ok := d.(FeatureGenerator); ok {
			g.featureGen = fg
		}
	}
	return g
}

// Metrics returns the generation metrics.
func (g *JenniferGenerator) Metrics() *WriterMetrics {
	return g.metrics
}

// Generate generates all code with parallel execution.
// Returns an error if no dialect has been set via WithDialect().
func (g *JenniferGenerator) Generate(ctx context.Context) error {
	if g.dialect == nil {
		return NewConfigError("dialect", nil, "no dialect generator set; call WithDialect before Generate")
	}
	if g.outDir == "" {
		return NewConfigError("target", nil, "no target directory")
	}
	if err := g.checkFileNames(); err != nil {
		return err
	}
	if err := os.MkdirAll(g.outDir, 0o755); err != nil {
		return err
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	write := func(model, name string, gen func() *jen.File) {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(model, name, gen())
		})
	}

	for _, m := range g.graph.Models {
		write(m.QualifiedName(), m.FileName(), func() *jen.File { return g.dialect.GenModel(m) })
	}
	write("", packageFile, g.dialect.GenPackage)

	if g.featureGen != nil {
		for _, f := range AllFeatures {
			name, ok := featureFiles[f.Name]
			if !ok || !g.FeatureEnabled(f.Name) || !g.featureGen.SupportsFeature(f.Name) {
				continue
			}
			write("", name, func() *jen.File { return g.featureGen.GenFeature(f.Name) })
		}
	}

	if err := errg.Wait(); err != nil {
		return err
	}
	if err := cleanupFeatures(g.graph.Config); err != nil {
		return err
	}
	g.graph.logger().Info("generated models",
		"target", g.outDir,
		"package", g.pkg,
		"files", g.metrics.FilesGenerated,
		"bytes", g.metrics.TotalBytes,
	)
	return nil
}

// checkFileNames rejects models whose file collides with another generated file.
func (g *JenniferGenerator) checkFileNames() error {
	seen := map[string]string{packageFile: "package"}
	for feature, name := range featureFiles {
		seen[name] = "feature " + feature
	}
	for _, m := range g.graph.Models {
		name := m.FileName()
		if prev, ok := seen[name]; ok {
			return NewGenerationError(m.QualifiedName(), name, StageLayout, fmt.Errorf("file name already used by %s", prev))
		}
		seen[name] = "model " + m.Name
	}
	return nil
}

// =============================================================================
// GeneratorHelper interface implementation
// =============================================================================

// NewFile creates a new Jennifer file with the standard header comment.
func (g *JenniferGenerator) NewFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment(g.graph.header())
	return f
}

// GoType returns the Jennifer code for a field's Go type.
func (g *JenniferGenerator) GoType(f *Field) jen.Code {
	if f.Optional {
		return jen.Op("*").Add(g.BaseType(f))
	}
	return g.BaseType(f)
}

// BaseType returns the Jennifer code for a field's base type (without pointer).
func (g *JenniferGenerator) BaseType(f *Field) jen.Code {
	return typeCode(f.GoType())
}

// KeyType returns the Jennifer code for the primary key type of a model.
func (g *JenniferGenerator) KeyType(m *Model) jen.Code {
	if m.HasCompositeKey() {
		return jen.Id(m.CompositeKeyName())
	}
	return g.GoType(m.PrimaryKey[0])
}

// ModelcPkg returns the import path of the modelc runtime package.
func (g *JenniferGenerator) ModelcPkg() string { return modelcPkg }

// Graph returns the compiled graph.
func (g *JenniferGenerator) Graph() *Graph { return g.graph }

// Pkg returns the output package name.
func (g *JenniferGenerator) Pkg() string { return g.pkg }

// FeatureEnabled reports if the given feature name is enabled.
func (g *JenniferGenerator) FeatureEnabled(name string) bool {
	enabled, _ := g.graph.FeatureEnabled(name)
	return enabled
}

// Verify JenniferGenerator implements GeneratorHelper at compile time.
var _ GeneratorHelper = (*JenniferGenerator)(nil)

// qualified types used by generated code.
var qualified = map[string][2]string{
	"time.Time":       {"time", "Time"},
	"time.Duration":   {"time", "Duration"},
	"uuid.UUID":       {"github.com/google/uuid", "UUID"},
	"decimal.Decimal": {"github.com/shopspring/decimal", "Decimal"},
	"json.RawMessage": {"encoding/json", "RawMessage"},
}

// typeCode returns the Jennifer code of a Go type expression.
func typeCode(t string) jen.Code {
	switch {
	case strings.HasPrefix(t, "*"):
		return jen.Op("*").Add(typeCode(t[1:]))
	case strings.HasPrefix(t, "[]"):
		return jen.Index().Add(typeCode(t[2:]))
	case t == "map[string]string":
		return jen.Map(jen.String()).String()
	case t == "any":
		return jen.Any()
	}
	if q, ok := qualified[t]; ok {
		return jen.Qual(q[0], q[1])
	}
	return jen.Id(t)
}
