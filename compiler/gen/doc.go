// Package gen compiles model declarations and generates Go code for them.
//
// A parsed declaration becomes a Model: its fields are classified, their
// column types mapped for the selected storage backend, raw SQL fragments
// filtered, conflicting settings rejected and the primary key selected.
// Relationship targets are resolved last, after which the model metadata and
// its fingerprint are emitted.
//
// # Architecture
//
// The compilation pipeline follows this flow:
//
//	Declaration file (YAML/JSON) or schema builder
//	        ↓
//	   load.Spec → load.Parse → load.Declaration
//	        ↓
//	   NewModel (classify, map types, check safety and conflicts, primary key)
//	        ↓
//	   Compile / NewGraph (resolve relationships, emit metadata)
//	        ↓
//	   modelc.Registry or JenniferGenerator + dialect (generated package)
//
// # Key Types
//
//   - Model: a compiled model with fields, primary key and relations
//   - Field: a plain column, a join column or a relationship container
//   - Relation: a resolved relationship with its join column or join table
//   - Graph: models compiled together, with forward references
//   - Config: compiler and generator configuration
//
// # Interface Hierarchy
//
//	MinimalDialect
//	├── ModelGenerator    GenModel(*Model) *jen.File
//	└── PackageGenerator  GenPackage() *jen.File
//
//	DialectGenerator (extends MinimalDialect)
//	└── FeatureGenerator  SupportsFeature, GenFeature
//
// # Error Handling
//
// Compilation failures use the error types of package modelc
// (DeclarationError, TypeMappingError, UnsafeExpressionError,
// ConstraintConflictError, RelationshipError). Errors of distinct models of a
// graph are aggregated. Generator failures are ConfigError and
// GenerationError values:
//
//	g, err := gen.NewGraph(cfg, specs...)
//	if modelc.IsUnsafeExpressionError(err) {
//	    // reject the declaration
//	}
//
// # Usage
//
//	cfg := gen.MustNewConfig(
//	    gen.WithDialect("postgres"),
//	    gen.WithTarget("./models"),
//	    gen.WithPackage("github.com/acme/shop/models"),
//	)
//	g, err := gen.NewGraph(cfg, specs...)
//	if err != nil {
//	    return err
//	}
//	generator := gen.NewJenniferGenerator(g, cfg.Target)
//	generator.WithDialect(sql.NewDialect(generator))
//	return generator.Generate(ctx)
package gen
