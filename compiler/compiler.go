// Package compiler is the entry point of the model compiler. It loads model
// declarations, compiles them into metadata and registers them, or renders
// them into a typed Go package.
//
//	compiler.MustRegister(
//		schema.Model("Order").Table("orders").Fields(
//			field.UUID("id").PrimaryKey(),
//			field.Decimal("total", 10, 2),
//		),
//	)
package compiler

import (
	"context"
	"fmt"
	"os"

	"github.com/syssam/modelc/compiler/gen"
	"github.com/syssam/modelc/compiler/gen/sql"
	"github.com/syssam/modelc/compiler/load"
)

// A Declarer provides the raw declaration of one model. *schema.Builder and
// *load.Spec implement it.
type Declarer interface {
	Spec() *load.Spec
}

// Compile compiles a single model declaration. Relationship targets are
// looked up in the configured registry; unknown targets get UUID join
// columns.
func Compile(d Declarer, opts ...gen.Option) (*gen.Model, error) {
	c, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return gen.CompileSpec(c, d.Spec())
}

// Register compiles the declaration and adds it to the configured registry.
// Registering an unchanged declaration again is a no-op.
func Register(d Declarer, opts ...gen.Option) (*gen.Model, error) {
	m, err := Compile(d, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Register(); err != nil {
		return nil, err
	}
	return m, nil
}

// MustRegister registers the declarations in the process-wide registry, in
// order. It panics on the first error and is meant for init functions.
func MustRegister(ds ...Declarer) {
	for _, d := range ds {
		if _, err := Register(d); err != nil {
			panic(err)
		}
	}
}

// Load reads the declarations at path, a file or a directory, and compiles
// them into a graph.
func Load(path string, cfg *gen.Config) (*gen.Graph, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("modelc/compiler: %w", err)
	}
	var specs []*load.Spec
	if info.IsDir() {
		specs, err = load.ReadDir(path)
	} else {
		specs, err = load.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("modelc/compiler: no model declarations found in %s", path)
	}
	return gen.NewGraph(cfg, specs...)
}

// Generate loads the declarations at path and writes the generated package
// into the target directory of the config.
func Generate(ctx context.Context, path string, cfg *gen.Config) error {
	if cfg == nil || cfg.Target == "" {
		return gen.NewConfigError("target", nil, "no target directory in config")
	}
	g, err := Load(path, cfg)
	if err != nil {
		return err
	}
	return sql.Generate(ctx, g)
}
